package entity

import (
	"time"
)

// HttpLogRecord is the row stored in ClickHouse. RemoteAddr holds the
// prefix-preserving pseudonym, never the client address.
type HttpLogRecord struct {
	Timestamp        time.Time
	ResourceID       uint64
	BytesSent        uint64
	RequestTimeMilli uint64
	ResponseStatus   uint16
	CacheStatus      string
	Method           string
	RemoteAddr       string
	URL              string
}

// Columns lists the table columns in the order Values returns them.
var Columns = []string{
	"timestamp",
	"resource_id",
	"bytes_sent",
	"request_time_milli",
	"response_status",
	"cache_status",
	"method",
	"remote_addr",
	"url",
}

func (r HttpLogRecord) Values() []any {
	return []any{
		r.Timestamp,
		r.ResourceID,
		r.BytesSent,
		r.RequestTimeMilli,
		r.ResponseStatus,
		r.CacheStatus,
		r.Method,
		r.RemoteAddr,
		r.URL,
	}
}
