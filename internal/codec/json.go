// Package codec registers the "json" gRPC content subtype used by the
// discovery API. Domain messages are plain Go structs; generated protobuf
// messages (health, reflection) go through protojson.
package codec

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name is the content subtype, as in "application/grpc+json".
const Name = "json"

type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

func (JSON) Name() string { return Name }

func (JSON) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}
