package config

import (
	"strings"
	"time"
)

// Seed accounts used when AUTH_USERS is unset.
var defaultUsers = []UserEntry{
	{Username: "admin", Role: "Administrateur"},
	{Username: "ftf", Role: "Fédération"},
	{Username: "user", Role: "Utilisateur"},
}

// UserEntry is one allow-listed account. Password is plaintext config input;
// the session package hashes it at startup.
type UserEntry struct {
	Username string
	Password string
	Role     string
}

// AuthConfig controls login and session storage.
type AuthConfig struct {
	Users         []UserEntry
	SessionStore  string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func loadAuth() AuthConfig {
	return AuthConfig{
		Users:         parseUsers(envOrDefault(envAuthUsers, ""), envOrDefault(envAuthDefaultPassword, "")),
		SessionStore:  strings.ToLower(envOrDefault(envSessionStore, defaultSessionStore)),
		SessionTTL:    durationEnvOrDefault(envSessionTTL, defaultSessionTTL),
		RedisAddr:     envOrDefault(envRedisAddr, defaultRedisAddr),
		RedisPassword: envOrDefault(envRedisPassword, ""),
		RedisDB:       nonNegativeIntEnvOrDefault(envRedisDB, 0),
	}
}

// parseUsers reads "user:password:role" entries separated by commas.
// Entries missing a password take defaultPassword; malformed entries are skipped.
func parseUsers(raw, defaultPassword string) []UserEntry {
	if strings.TrimSpace(raw) == "" {
		users := make([]UserEntry, len(defaultUsers))
		for i, u := range defaultUsers {
			u.Password = defaultPassword
			users[i] = u
		}
		return users
	}

	var users []UserEntry
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		u := UserEntry{Username: parts[0], Password: parts[1]}
		if len(parts) == 3 {
			u.Role = parts[2]
		}
		if u.Password == "" {
			u.Password = defaultPassword
		}
		users = append(users, u)
	}
	return users
}
