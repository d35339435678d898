package model

// HttpLogRecord is one decoded log message. RemoteAddr still holds the real
// client address at this stage.
type HttpLogRecord struct {
	TimestampEpochMilli uint64
	ResourceID          uint64
	BytesSent           uint64
	RequestTimeMilli    uint64
	ResponseStatus      uint16
	CacheStatus         string
	Method              string
	RemoteAddr          string
	URL                 string

	Source Source
}

// Source locates the Kafka message a record was decoded from.
type Source struct {
	Topic     string
	Partition int
	Offset    int64
}
