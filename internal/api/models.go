package api

import "time"

type PlatformVersionResponse struct {
	Version string `json:"version"`
}

type PermissionStatus struct {
	State          string          `json:"state"`
	PendingRequest *PendingRequest `json:"pending_request,omitempty"`
}

type PendingRequest struct {
	ID         string    `json:"id"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

type PermissionRequestResult struct {
	State string `json:"state"`
}

type DecisionRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

type ClassifyRequest struct {
	Body *string `json:"body" binding:"required"`
}

type MethodsResponse struct {
	Methods []string `json:"methods"`
}
