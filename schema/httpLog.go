// Package schema holds the Cap'n Proto accessors for httpLog.capnp.
//
// Data section: four UInt64 words then the UInt16 status (40 bytes).
// Pointer section: cacheStatus, method, remoteAddr, url.
package schema

import (
	capnp "capnproto.org/go/capnp/v3"
)

var httpLogRecordSize = capnp.ObjectSize{DataSize: 40, PointerCount: 4}

type HttpLogRecord capnp.Struct

func NewRootHttpLogRecord(s *capnp.Segment) (HttpLogRecord, error) {
	st, err := capnp.NewRootStruct(s, httpLogRecordSize)
	return HttpLogRecord(st), err
}

func ReadRootHttpLogRecord(msg *capnp.Message) (HttpLogRecord, error) {
	root, err := msg.Root()
	return HttpLogRecord(root.Struct()), err
}

func (s HttpLogRecord) TimestampEpochMilli() uint64 { return capnp.Struct(s).Uint64(0) }

func (s HttpLogRecord) SetTimestampEpochMilli(v uint64) { capnp.Struct(s).SetUint64(0, v) }

func (s HttpLogRecord) ResourceId() uint64 { return capnp.Struct(s).Uint64(8) }

func (s HttpLogRecord) SetResourceId(v uint64) { capnp.Struct(s).SetUint64(8, v) }

func (s HttpLogRecord) BytesSent() uint64 { return capnp.Struct(s).Uint64(16) }

func (s HttpLogRecord) SetBytesSent(v uint64) { capnp.Struct(s).SetUint64(16, v) }

func (s HttpLogRecord) RequestTimeMilli() uint64 { return capnp.Struct(s).Uint64(24) }

func (s HttpLogRecord) SetRequestTimeMilli(v uint64) { capnp.Struct(s).SetUint64(24, v) }

func (s HttpLogRecord) ResponseStatus() uint16 { return capnp.Struct(s).Uint16(32) }

func (s HttpLogRecord) SetResponseStatus(v uint16) { capnp.Struct(s).SetUint16(32, v) }

func (s HttpLogRecord) text(i uint16) (string, error) {
	p, err := capnp.Struct(s).Ptr(i)
	return p.Text(), err
}

func (s HttpLogRecord) CacheStatus() (string, error) { return s.text(0) }

func (s HttpLogRecord) SetCacheStatus(v string) error { return capnp.Struct(s).SetText(0, v) }

func (s HttpLogRecord) Method() (string, error) { return s.text(1) }

func (s HttpLogRecord) SetMethod(v string) error { return capnp.Struct(s).SetText(1, v) }

func (s HttpLogRecord) RemoteAddr() (string, error) { return s.text(2) }

func (s HttpLogRecord) SetRemoteAddr(v string) error { return capnp.Struct(s).SetText(2, v) }

func (s HttpLogRecord) Url() (string, error) { return s.text(3) }

func (s HttpLogRecord) SetUrl(v string) error { return capnp.Struct(s).SetText(3, v) }
