package utils

import (
	"os"
	"strconv"
	"time"
)

func EpochMilliToTime(epochMilli uint64) time.Time {
	sec := int64(epochMilli / 1000)
	nsec := int64((epochMilli % 1000) * 1000000)
	return time.Unix(sec, nsec)
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvAsInt returns fallback when key is unset or not an integer.
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
