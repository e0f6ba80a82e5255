// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/prism/pkg/backend"
	"github.com/Thermoquad/prism/pkg/companion"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/spf13/afero"
)

// sessionTiming maps the [timing] config section onto controller waits.
func sessionTiming() *session.Timing {
	t := cfg.Timing()
	return &session.Timing{
		InterCommand:   t.InterCommand.Std(),
		ConnectBackoff: t.ConnectBackoff.Std(),
		VolumeRetry:    t.VolumeRetry.Std(),
		PowerSettle:    t.PowerSettle.Std(),
		BootSettle:     t.BootSettle.Std(),
	}
}

// newRecorder wraps t so every exchange lands in the history and statistics.
func newRecorder(t transport.Transport) *transport.Recorder {
	return transport.NewRecorder(t, transport.NewHistory(transport.MAX_HISTORY), transport.NewStatistics(nil), nil)
}

func newController(t transport.Transport) *session.Controller {
	return session.NewController(t, session.Options{Timing: sessionTiming()})
}

// newMapper picks the companion store. The backend holds the mappings and
// drives the remotes; without it mappings live in a local file and there is
// no remote.
func newMapper(b *backend.Client) *companion.Mapper {
	if b != nil {
		roku := b.Roku()
		return companion.NewMapper(roku, roku)
	}
	store := companion.NewFileStore(afero.NewOsFs(), cfg.MappingsFile())
	return companion.NewMapper(store, nil)
}
