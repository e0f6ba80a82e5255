// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Thermoquad/prism/pkg/companion"
)

// Roku reaches the backend's companion device endpoints. It stores
// mappings, discovers devices and forwards remote keys and app launches.
type Roku struct {
	c *Client
}

var (
	_ companion.Store       = (*Roku)(nil)
	_ companion.Discoverer  = (*Roku)(nil)
	_ companion.Remote      = (*Roku)(nil)
	_ companion.AppLauncher = (*Roku)(nil)
)

func (c *Client) Roku() *Roku {
	return &Roku{c: c}
}

func (r *Roku) Discover(ctx context.Context) ([]companion.Device, error) {
	var out struct {
		Devices []companion.Device `json:"devices"`
	}
	if err := r.c.do(ctx, http.MethodGet, "/api/roku/discover", nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// Load fetches the stored HDMI to device mappings.
func (r *Roku) Load(ctx context.Context) (companion.Mappings, error) {
	var out struct {
		Mappings companion.Mappings `json:"mappings"`
	}
	if err := r.c.do(ctx, http.MethodGet, "/api/roku/mappings", nil, &out); err != nil {
		return nil, err
	}
	if out.Mappings == nil {
		return companion.Mappings{}, nil
	}
	return out.Mappings, nil
}

// Save replaces the stored mappings wholesale.
func (r *Roku) Save(ctx context.Context, m companion.Mappings) error {
	if m == nil {
		m = companion.Mappings{}
	}
	body := struct {
		Mappings companion.Mappings `json:"mappings"`
	}{m}
	return r.c.do(ctx, http.MethodPost, "/api/roku/mappings", body, nil)
}

type rokuCommand struct {
	HDMI    int    `json:"hdmi"`
	Command string `json:"command"`
}

// SendKey presses key on the device mapped to hdmi. The backend resolves
// the mapping.
func (r *Roku) SendKey(ctx context.Context, hdmi int, key companion.Key) error {
	return r.c.do(ctx, http.MethodPost, "/api/roku/command", rokuCommand{HDMI: hdmi, Command: string(key)}, nil)
}

func (r *Roku) Apps(ctx context.Context, hdmi int) ([]companion.App, error) {
	var out struct {
		Apps []companion.App `json:"apps"`
	}
	if err := r.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/roku/apps/%d", hdmi), nil, &out); err != nil {
		return nil, err
	}
	return out.Apps, nil
}

type launchRequest struct {
	HDMI  int    `json:"hdmi"`
	AppID string `json:"app_id"`
}

func (r *Roku) Launch(ctx context.Context, hdmi int, appID string) error {
	return r.c.do(ctx, http.MethodPost, "/api/roku/launch", launchRequest{HDMI: hdmi, AppID: appID}, nil)
}
