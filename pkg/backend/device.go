// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Thermoquad/prism/pkg/transport"
)

// historyTimestamp is the backend's wall-clock format for history entries.
const historyTimestamp = "15:04:05"

type historyEntry struct {
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
	Response  string `json:"response"`
}

type historyResponse struct {
	Count   int            `json:"count"`
	History []historyEntry `json:"history"`
}

// History returns up to limit of the backend's most recent exchanges,
// newest first. Timestamps carry only a time of day and are placed on the
// current date.
func (c *Client) History(ctx context.Context, limit int) ([]transport.Entry, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var out historyResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	now := c.now()
	entries := make([]transport.Entry, 0, len(out.History))
	for i := len(out.History) - 1; i >= 0; i-- {
		h := out.History[i]
		entries = append(entries, transport.Entry{
			Timestamp: onDate(now, h.Timestamp),
			Command:   h.Command,
			Response:  h.Response,
		})
	}
	return entries, nil
}

func onDate(day time.Time, clock string) time.Time {
	t, err := time.ParseInLocation(historyTimestamp, clock, day.Location())
	if err != nil {
		return time.Time{}
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location())
}

// ClearHistory empties the backend's history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/history", nil, nil)
}

// Status is the backend's view of the serial link and device power.
type Status struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
	PowerOn   bool   `json:"power_on"`
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// SerialPort describes a port the backend host could open.
type SerialPort struct {
	Device       string `json:"device"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer"`
}

type SerialConfig struct {
	CurrentPort    string       `json:"current_port"`
	Connected      bool         `json:"connected"`
	AvailablePorts []SerialPort `json:"available_ports"`
}

func (c *Client) SerialConfig(ctx context.Context) (SerialConfig, error) {
	var out SerialConfig
	err := c.do(ctx, http.MethodGet, "/api/config/serial", nil, &out)
	return out, err
}

// PortChange is the outcome of switching the backend's serial port.
type PortChange struct {
	Message   string `json:"message"`
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
}

// SetSerialPort points the backend at another port. The port is saved even
// when the reconnect fails; Connected reports which happened.
func (c *Client) SetSerialPort(ctx context.Context, port string) (PortChange, error) {
	var out PortChange
	err := c.do(ctx, http.MethodPost, "/api/config/serial", map[string]string{"port": port}, &out)
	return out, err
}
