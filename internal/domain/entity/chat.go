package entity

import "time"

// ChatTurn 一次问答，不落库
type ChatTurn struct {
	Message   string    `json:"message"`
	Intent    Intent    `json:"intent"`
	Reply     string    `json:"reply"`
	Grounded  bool      `json:"grounded"`
	Timestamp time.Time `json:"timestamp"`
}
