package capnproto

import (
	"fmt"

	"capnproto.org/go/capnp/v3"

	"github.com/kulikvl/ip-anonymizer/internal/model"
	"github.com/kulikvl/ip-anonymizer/schema"
)

func Decode(data []byte) (model.HttpLogRecord, error) {
	msg, err := capnp.Unmarshal(data)
	if err != nil {
		return model.HttpLogRecord{}, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	log, err := schema.ReadRootHttpLogRecord(msg)
	if err != nil {
		return model.HttpLogRecord{}, fmt.Errorf("failed to read root HttpLogRecord: %w", err)
	}

	rec := model.HttpLogRecord{
		TimestampEpochMilli: log.TimestampEpochMilli(),
		ResourceID:          log.ResourceId(),
		BytesSent:           log.BytesSent(),
		RequestTimeMilli:    log.RequestTimeMilli(),
		ResponseStatus:      log.ResponseStatus(),
	}

	texts := []struct {
		name string
		get  func() (string, error)
		dst  *string
	}{
		{"cache status", log.CacheStatus, &rec.CacheStatus},
		{"method", log.Method, &rec.Method},
		{"remote address", log.RemoteAddr, &rec.RemoteAddr},
		{"URL", log.Url, &rec.URL},
	}
	for _, f := range texts {
		v, err := f.get()
		if err != nil {
			return model.HttpLogRecord{}, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		*f.dst = v
	}

	return rec, nil
}

// Encode is the producer side of Decode: it builds the message a log
// publisher writes to the topic. The Source of r is not encoded.
func Encode(r model.HttpLogRecord) ([]byte, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	log, err := schema.NewRootHttpLogRecord(seg)
	if err != nil {
		return nil, fmt.Errorf("failed to create root HttpLogRecord: %w", err)
	}
	log.SetTimestampEpochMilli(r.TimestampEpochMilli)
	log.SetResourceId(r.ResourceID)
	log.SetBytesSent(r.BytesSent)
	log.SetRequestTimeMilli(r.RequestTimeMilli)
	log.SetResponseStatus(r.ResponseStatus)

	for _, set := range []struct {
		name string
		fn   func(string) error
		v    string
	}{
		{"cache status", log.SetCacheStatus, r.CacheStatus},
		{"method", log.SetMethod, r.Method},
		{"remote address", log.SetRemoteAddr, r.RemoteAddr},
		{"URL", log.SetUrl, r.URL},
	} {
		if err := set.fn(set.v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", set.name, err)
		}
	}

	data, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}
