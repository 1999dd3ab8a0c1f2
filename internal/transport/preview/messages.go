package preview

import (
	"encoding/json"

	"planetgen.ai/internal/sampler"
)

const Version = "1.0"

const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeRegion  = "REGION"
	TypeGrid    = "GRID"
	TypeError   = "ERROR"
)

const (
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrPlanetNotFound = "E_PLANET_NOT_FOUND"
	ErrCancelled      = "E_CANCELLED"
)

type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Client          string `json:"client,omitempty"`
}

type PlanetInfo struct {
	ID       string `json:"id"`
	MinY     int    `json:"min_y"`
	MaxY     int    `json:"max_y"`
	SeaLevel int    `json:"sea_level"`
}

type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Namespace       string       `json:"namespace"`
	Seed            int64        `json:"seed"`
	Planets         []PlanetInfo `json:"planets"`
}

// RegionMsg asks for a grid of sampled columns.
type RegionMsg struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Planet    string `json:"planet"`
	X         int    `json:"x"`
	Z         int    `json:"z"`
	Width     int    `json:"width"`
	Depth     int    `json:"depth"`
	Stride    int    `json:"stride"`
}

func (m RegionMsg) Region() sampler.Region {
	return sampler.Region{X: m.X, Z: m.Z, Width: m.Width, Depth: m.Depth, Stride: m.Stride}
}

type GridMsg struct {
	Type      string           `json:"type"`
	RequestID string           `json:"request_id,omitempty"`
	Planet    string           `json:"planet"`
	Region    sampler.Region   `json:"region"`
	Columns   []sampler.Column `json:"columns"`
}

type ErrorMsg struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}
