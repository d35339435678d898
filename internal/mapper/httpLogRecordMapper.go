package mapper

import (
	"fmt"

	"github.com/kulikvl/ip-anonymizer/internal/database/entity"
	"github.com/kulikvl/ip-anonymizer/internal/model"
	"github.com/kulikvl/ip-anonymizer/internal/utils"
)

// AddressAnonymizer replaces a textual IPv4 address with its pseudonym.
type AddressAnonymizer interface {
	AnonymizeString(addr string) (string, error)
}

// ToDb converts a decoded record to its stored form. The remote address is
// anonymized; a record whose address cannot be parsed is rejected rather than
// stored with the real address.
func ToDb(r model.HttpLogRecord, anon AddressAnonymizer) (entity.HttpLogRecord, error) {
	remoteAddr := r.RemoteAddr
	if remoteAddr != "" {
		var err error
		if remoteAddr, err = anon.AnonymizeString(remoteAddr); err != nil {
			return entity.HttpLogRecord{}, fmt.Errorf("failed to anonymize remote address (offset %d): %w", r.Source.Offset, err)
		}
	}

	return entity.HttpLogRecord{
		Timestamp:        utils.EpochMilliToTime(r.TimestampEpochMilli),
		ResourceID:       r.ResourceID,
		BytesSent:        r.BytesSent,
		RequestTimeMilli: r.RequestTimeMilli,
		ResponseStatus:   r.ResponseStatus,
		CacheStatus:      r.CacheStatus,
		Method:           r.Method,
		RemoteAddr:       remoteAddr,
		URL:              r.URL,
	}, nil
}
