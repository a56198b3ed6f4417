package api

import "encoding/json"

type loginRequest struct {
	Handle     string `json:"handle" validate:"required"`
	Password   string `json:"password" validate:"required"`
	DeviceUUID string `json:"device_uuid" validate:"required,device_uuid"`
	DeviceType string `json:"device_type" validate:"required,oneof=web android ios unknown"`
	DeviceName string `json:"device_name"`
	OSInfo     string `json:"os_info"`
}

type redeemInviteRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceUUID string `json:"device_uuid" validate:"required,device_uuid"`
	DeviceType string `json:"device_type" validate:"required,oneof=web android ios unknown"`
	DeviceName string `json:"device_name"`
	OSInfo     string `json:"os_info"`
}

type challengeRequest struct {
	Handle     string `json:"handle" validate:"required"`
	Signature  string `json:"signature" validate:"required"`
	DeviceUUID string `json:"device_uuid" validate:"required,device_uuid"`
	DeviceType string `json:"device_type" validate:"required,oneof=web android ios unknown"`
	DeviceName string `json:"device_name"`
	OSInfo     string `json:"os_info"`
}

type searchRequest struct {
	Query string `json:"query"`
	Types []string `json:"types,omitempty"`
	Limit int `json:"limit,omitempty"`
}

type setTracksRequest struct {
	TrackIDs []string `json:"track_ids" validate:"required"`
}

type createPlaylistRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type renamePlaylistRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type setSettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

type recordListeningRequest struct {
	TrackID    string `json:"track_id" validate:"required"`
	DurationMs int64  `json:"duration_ms" validate:"gte=0"`
	Source     string `json:"source"`
}

type createUserRequest struct {
	Handle   string `json:"handle" validate:"required,handle"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin regular"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin regular"`
}

type grantPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

type createInviteRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	TTLMins int    `json:"ttl_minutes" validate:"required,invite_ttl"`
}

type triggerJobRequest struct {
	Kind string `json:"kind,omitempty"`
}
