package spyder

import "encoding/json"

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Validator is implemented by output types that reject structurally valid
// JSON missing required content.
type Validator interface {
	Validate() error
}

// JSONCodec encodes with encoding/json. After a successful decode it runs
// Validate on the target when the target implements Validator.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}
