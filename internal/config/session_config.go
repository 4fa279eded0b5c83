package config

import "strconv"

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionDir() string
	GetSessionExpirySeconds() int
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

func (Sessions) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "session_id")
}

func (Sessions) GetSessionDir() string {
	return GetEnv("SESSION_DIR", "./sessions")
}

func (Sessions) GetSessionExpirySeconds() int {
	seconds, err := strconv.Atoi(GetEnv("SESSION_EXPIRES_SECONDS", "86400"))
	if err != nil || seconds <= 0 {
		return 86400
	}
	return seconds
}
