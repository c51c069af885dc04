package docstore

import "encoding/json"

// Encode marshals a value into document data.
func Encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Decode unmarshals a document's data into v.
func Decode(doc Document, v any) error {
	return json.Unmarshal(doc.Data, v)
}
