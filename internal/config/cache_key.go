package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FaceLoginAttemptsKey returns the sorted-set key holding a student's failed face-login timestamps
func (r *CacheKeyStruct) FaceLoginAttemptsKey(euid string) string {
	return fmt.Sprintf("ratelimit:face_login:%s", euid)
}

// AuthIPAttemptsKey returns the sorted-set key holding request timestamps for a client IP on /auth routes
func (r *CacheKeyStruct) AuthIPAttemptsKey(ip string) string {
	return fmt.Sprintf("ratelimit:auth_ip:%s", ip)
}

// AttendanceFeedChannel returns the Redis PubSub channel name for a class's live attendance feed
func (r *CacheKeyStruct) AttendanceFeedChannel(classCode string) string {
	return fmt.Sprintf("class:%s:attendance", classCode)
}

var CacheKey = NewCacheKeyStruct()
