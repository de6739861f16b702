package cache

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	SerializerJSON    = "json"
	SerializerMsgpack = "msgpack"
	SerializerCBOR    = "cbor"
)

// NewSerializer returns the serializer called name; "" means json.
func NewSerializer(name string) (Serializer, error) {
	switch name {
	case "", SerializerJSON:
		return JSONSerializer{}, nil
	case SerializerMsgpack:
		return MsgpackSerializer{}, nil
	case SerializerCBOR:
		s, err := NewCBORSerializer()
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, ErrConfigInvalid.WithMsgf("unknown serializer %q", name)
	}
}

type JSONSerializer struct{}

func (JSONSerializer) Name() string { return SerializerJSON }

func (JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

func (JSONSerializer) Deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}

// MsgpackSerializer honors `msgpack` struct tags.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Name() string { return SerializerMsgpack }

func (MsgpackSerializer) Serialize(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

func (MsgpackSerializer) Deserialize(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}

// CBORSerializer uses core deterministic encoding, so equal snapshots produce
// identical payloads.
type CBORSerializer struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBORSerializer() (*CBORSerializer, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	return &CBORSerializer{enc: enc, dec: dec}, nil
}

func (s *CBORSerializer) Name() string { return SerializerCBOR }

func (s *CBORSerializer) Serialize(v any) ([]byte, error) {
	data, err := s.enc.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

func (s *CBORSerializer) Deserialize(data []byte, v any) error {
	if err := s.dec.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}
