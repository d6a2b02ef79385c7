package snapshot

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/botdb/codec"
)

// Formats accepted by Write.
const (
	FormatJSON     = "json"
	FormatMsgpack  = "msgpack"
	FormatCBOR     = "cbor"
	FormatProtobuf = "protobuf"
)

// format ids stored in the frame header; never renumber.
const (
	idJSON byte = iota + 1
	idMsgpack
	idCBOR
	idProtobuf
)

func lookup(format string) (byte, codec.Codec[Snapshot], error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return idJSON, codec.JSON[Snapshot]{}, nil
	case FormatMsgpack:
		return idMsgpack, codec.Msgpack[Snapshot]{}, nil
	case FormatCBOR:
		c, err := codec.NewCBOR[Snapshot](true)
		return idCBOR, c, err
	case FormatProtobuf, "proto":
		return idProtobuf, newProtoCodec(), nil
	}
	return 0, nil, fmt.Errorf("snapshot: unknown format %q", format)
}

func codecByID(id byte) (codec.Codec[Snapshot], error) {
	switch id {
	case idJSON:
		return codec.JSON[Snapshot]{}, nil
	case idMsgpack:
		return codec.Msgpack[Snapshot]{}, nil
	case idCBOR:
		return codec.NewCBOR[Snapshot](true)
	case idProtobuf:
		return newProtoCodec(), nil
	}
	return nil, fmt.Errorf("snapshot: unknown format id %d", id)
}

func newProtoCodec() protoCodec {
	return protoCodec{pb: codec.NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })}
}

// protoCodec carries a Snapshot as a google.protobuf.Struct.
type protoCodec struct {
	pb codec.Protobuf[*structpb.Struct]
}

func (c protoCodec) Encode(s Snapshot) ([]byte, error) {
	entries := make([]any, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = map[string]any{"key": e.Key, "text": e.Text}
	}
	st, err := structpb.NewStruct(map[string]any{
		"version":    s.Version,
		"backend":    s.Backend,
		"created_at": s.CreatedAt.Format(time.RFC3339Nano),
		"entries":    entries,
	})
	if err != nil {
		return nil, err
	}
	return c.pb.Encode(st)
}

func (c protoCodec) Decode(b []byte) (Snapshot, error) {
	st, err := c.pb.Decode(b)
	if err != nil {
		return Snapshot{}, err
	}
	f := st.GetFields()
	s := Snapshot{
		Version: int(f["version"].GetNumberValue()),
		Backend: f["backend"].GetStringValue(),
	}
	if ts := f["created_at"].GetStringValue(); ts != "" {
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return Snapshot{}, err
		}
	}
	for _, item := range f["entries"].GetListValue().GetValues() {
		ef := item.GetStructValue().GetFields()
		s.Entries = append(s.Entries, Entry{
			Key:  ef["key"].GetStringValue(),
			Text: ef["text"].GetStringValue(),
		})
	}
	return s, nil
}
