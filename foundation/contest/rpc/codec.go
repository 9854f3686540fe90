// Package rpc exposes the coordinator over gRPC. Messages are encoded as JSON
// using a codec registered with grpc, so no generated code is required.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype clients must request.
const codecName = "json"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec implements the grpc encoding.Codec interface.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return codecName
}
