// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrDisconnected is returned by Refresh when the device does not answer
// the connectivity probe.
var ErrDisconnected = errors.New("device not responding")

// Timing holds the fixed waits the serial device needs between commands.
type Timing struct {
	// InterCommand separates queries that interfere on the serial line.
	InterCommand time.Duration
	// ConnectBackoff is the wait before the single connectivity retry.
	ConnectBackoff time.Duration
	// VolumeRetry is the wait before re-asking for the volume.
	VolumeRetry time.Duration
	// PowerSettle is how long a power change takes to show in status.
	PowerSettle time.Duration
	// BootSettle is the extra wait after power-on before a full refresh.
	BootSettle time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		InterCommand:   200 * time.Millisecond,
		ConnectBackoff: time.Second,
		VolumeRetry:    500 * time.Millisecond,
		PowerSettle:    2 * time.Second,
		BootSettle:     3 * time.Second,
	}
}

// Options configures a Controller. Zero fields take defaults.
type Options struct {
	Timing  *Timing
	Clock   clockwork.Clock
	Events  *Dispatcher
	Session *Session
}

// Controller sequences device queries and commands and keeps the Session
// in step with the device.
type Controller struct {
	transport transport.Transport
	clock     clockwork.Clock
	timing    Timing
	state     *Session
	events    *Dispatcher
}

func NewController(t transport.Transport, opts Options) *Controller {
	c := &Controller{
		transport: t,
		clock:     opts.Clock,
		timing:    DefaultTiming(),
		state:     opts.Session,
		events:    opts.Events,
	}
	if opts.Timing != nil {
		c.timing = *opts.Timing
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.state == nil {
		c.state = NewSession()
	}
	if c.events == nil {
		c.events = NewDispatcher()
	}
	return c
}

func (c *Controller) Session() *Session     { return c.state }
func (c *Controller) Events() *Dispatcher   { return c.events }
func (c *Controller) Snapshot() State       { return c.state.Snapshot() }
func (c *Controller) Layout() layout.Layout { return c.state.Snapshot().Layout() }

//////////////////////////////////////////////////////////////
// Events
//////////////////////////////////////////////////////////////

func (c *Controller) publish(t EventType) {
	c.events.Publish(Event{Type: t, State: c.state.Snapshot()})
}

func (c *Controller) notice(level Level, format string, args ...any) {
	c.events.Publish(Event{
		Type:    EventNotice,
		State:   c.state.Snapshot(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

//////////////////////////////////////////////////////////////
// Sending
//////////////////////////////////////////////////////////////

// send issues a command under policy. Non-silent sends bracket the
// exchange with busy/idle events. Transport and backend failures are
// surfaced as error notices; a silent device is not.
func (c *Controller) send(ctx context.Context, command string, silent bool, policy RetryPolicy) (string, error) {
	if !silent {
		c.publish(EventBusy)
		defer c.publish(EventIdle)
	}

	resp, err := policy.Send(ctx, c.clock, c.transport, command)
	switch {
	case err == nil:
		return resp, nil
	case transport.IsNoResponse(err):
		log.Debug().Str("command", command).Msg("no response")
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		log.Warn().Err(err).Str("command", command).Msg("command failed")
		c.notice(LevelError, "Error: %v", err)
	}
	return "", err
}

// query is a silent, best-effort read. ok is false when nothing usable
// came back.
func (c *Controller) query(ctx context.Context, command string, policy RetryPolicy) (string, bool) {
	resp, err := c.send(ctx, command, true, policy)
	return resp, err == nil
}

// apply sends a set command. A silent device is not an error: the command
// is assumed to have taken effect.
func (c *Controller) apply(ctx context.Context, command string) error {
	_, err := c.send(ctx, command, false, NoRetry)
	if err != nil && !transport.IsNoResponse(err) {
		return err
	}
	return nil
}

func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}

// SendRaw sends an arbitrary command from the debug console. Known set
// commands with bad arguments are reported but still sent.
func (c *Controller) SendRaw(ctx context.Context, command string) (string, error) {
	for _, v := range orei.ValidateCommand(command) {
		log.Warn().Str("command", command).Interface("details", v.Details).Msg(v.Message)
		c.notice(LevelWarning, "%s", v.Message)
	}
	return c.send(ctx, orei.Normalize(command), false, NoRetry)
}

//////////////////////////////////////////////////////////////
// Status
//////////////////////////////////////////////////////////////

func powerFrom(on bool) Power {
	if on {
		return PowerOn
	}
	return PowerOff
}

func (c *Controller) setConnected(connected bool) {
	if c.state.SetConnected(connected) {
		c.publish(EventConnectionChanged)
	}
}

func (c *Controller) setPower(p Power) {
	if c.state.SetPower(p) {
		c.publish(EventPowerChanged)
	}
}

// CheckConnection probes the device with a power query, retrying once
// after the connect backoff. It records connectivity and power.
func (c *Controller) CheckConnection(ctx context.Context) (Power, bool) {
	policy := RetryPolicy{MaxAttempts: 2, Backoff: c.timing.ConnectBackoff}
	resp, err := c.send(ctx, orei.QUERY_POWER, true, policy)
	if err != nil {
		if ctx.Err() == nil {
			c.setConnected(false)
		}
		return PowerUnknown, false
	}

	c.setConnected(true)
	on, _ := orei.ParsePower(resp)
	p := powerFrom(on)
	c.setPower(p)
	return p, true
}

// CheckPower reads the power state once. ok is false when the device gave
// no answer, in which case the session is left unchanged.
func (c *Controller) CheckPower(ctx context.Context) (Power, bool) {
	resp, ok := c.query(ctx, orei.QUERY_POWER, NoRetry)
	if !ok {
		return PowerUnknown, false
	}
	on, _ := orei.ParsePower(resp)
	p := powerFrom(on)
	c.setConnected(true)
	c.setPower(p)
	return p, true
}

// FetchMode reads the display mode. On no answer the cached mode is
// returned with ok=false.
func (c *Controller) FetchMode(ctx context.Context) (layout.Mode, bool) {
	resp, ok := c.query(ctx, orei.QUERY_MULTIVIEW, NoRetry)
	if !ok {
		return c.state.Snapshot().Mode, false
	}
	m, matched := orei.ParseMultiview(resp)
	if !matched {
		log.Debug().Str("response", resp).Msg("unrecognised multiview response, assuming single screen")
	}
	return m, true
}

// Refresh repopulates the whole session: connectivity, power, mode, mode
// settings, window inputs, audio and output, in that order. Individual
// query failures leave the affected fields unchanged. Only a failed
// connectivity probe stops the refresh, returning ErrDisconnected.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	c.notice(LevelInfo, "Refreshing device settings...")

	p, ok := c.CheckConnection(ctx)
	if err := ctx.Err(); err != nil {
		return c.state.Snapshot(), err
	}
	if !ok {
		c.notice(LevelError, "Device not responding")
		return c.state.Snapshot(), ErrDisconnected
	}
	if p != PowerOn {
		return c.state.Snapshot(), nil
	}

	if m, ok := c.FetchMode(ctx); ok {
		c.transition(ctx, m, false)
	} else {
		c.transition(ctx, c.state.Snapshot().Mode, false)
	}

	c.LoadAudio(ctx)
	c.LoadOutput(ctx)

	if err := ctx.Err(); err != nil {
		return c.state.Snapshot(), err
	}

	c.state.MarkRefreshed(c.clock.Now())
	c.publish(EventRefreshCompleted)
	c.notice(LevelSuccess, "Device settings refreshed successfully")
	return c.state.Snapshot(), nil
}

// CheckStatus is the lightweight poll: it reads power and, when the device
// is on, the mode. The mode's settings and window inputs are only fetched
// again when the mode differs from the cached one.
func (c *Controller) CheckStatus(ctx context.Context) (bool, error) {
	p, ok := c.CheckPower(ctx)
	if !ok || p != PowerOn {
		return false, ctx.Err()
	}

	m, ok := c.FetchMode(ctx)
	if !ok || m == c.state.Snapshot().Mode {
		return false, ctx.Err()
	}

	log.Info().Stringer("mode", m).Msg("device mode changed")
	c.transition(ctx, m, true)
	return true, ctx.Err()
}

// transition moves the session to m: settings first, then the window
// inputs, and only then the layout events.
func (c *Controller) transition(ctx context.Context, m layout.Mode, announce bool) {
	changed := c.state.SetMode(m)
	c.LoadModeSettings(ctx, m)
	c.LoadWindowInputs(ctx, m)

	if changed || announce {
		c.publish(EventModeChanged)
	}
	c.publish(EventWindowInputsChanged)
}

//////////////////////////////////////////////////////////////
// Loaders
//////////////////////////////////////////////////////////////

// queryPair issues two independent queries concurrently.
func (c *Controller) queryPair(ctx context.Context, a, b string) (string, string) {
	var ra, rb string
	var g errgroup.Group
	g.Go(func() error {
		ra, _ = c.query(ctx, a, NoRetry)
		return nil
	})
	g.Go(func() error {
		rb, _ = c.query(ctx, b, NoRetry)
		return nil
	})
	_ = g.Wait()
	return ra, rb
}

// LoadModeSettings reads the sub-configuration relevant to m.
func (c *Controller) LoadModeSettings(ctx context.Context, m layout.Mode) {
	switch {
	case m == layout.ModePIP:
		posResp, sizeResp := c.queryPair(ctx, orei.QUERY_PIP_POSITION, orei.QUERY_PIP_SIZE)
		c.state.UpdateSettings(func(s *layout.Settings) {
			if p, ok := orei.ParsePIPPosition(posResp); ok {
				s.PIP.Position = p
			}
			if sz, ok := orei.ParsePIPSize(sizeResp); ok {
				s.PIP.Size = sz
			}
		})

	case m.IsSplit():
		subResp, aspectResp := c.queryPair(ctx, orei.QuerySubMode(m), orei.QueryAspect(m))
		c.state.UpdateSettings(func(s *layout.Settings) {
			sp, _ := s.Split(m)
			if sub, ok := orei.ParseSubMode(subResp); ok && sub >= 1 && sub <= m.SubModeCount() {
				sp.SubMode = sub
			}
			if a, ok := orei.ParseAspect(aspectResp); ok {
				sp.Aspect = a
			}
			if err := s.SetSplit(m, sp); err != nil {
				log.Warn().Err(err).Stringer("mode", m).Msg("keeping previous split settings")
			}
		})
	}
}

// LoadWindowInputs reads the input of every window of m concurrently.
// Windows that give no answer fall back to their own number.
func (c *Controller) LoadWindowInputs(ctx context.Context, m layout.Mode) {
	n := m.WindowCount()
	got := make([]int, n)

	var g errgroup.Group
	for w := 1; w <= n; w++ {
		g.Go(func() error {
			resp, _ := c.query(ctx, orei.QueryWindowInput(w), NoRetry)
			in, ok := orei.ParseWindowInput(resp, w)
			if !ok {
				log.Debug().Int("window", w).Msg("window input unknown, using window number")
			}
			got[w-1] = in
			return nil
		})
	}
	_ = g.Wait()

	in := make(layout.Inputs, n)
	for i, v := range got {
		in[i+1] = v
	}
	c.state.MergeInputs(in)
}

// LoadAudio reads source, volume and mute one after another; the volume
// query gets one retry.
func (c *Controller) LoadAudio(ctx context.Context) {
	srcResp, srcOK := c.query(ctx, orei.QUERY_AUDIO_SOURCE, NoRetry)
	if c.wait(ctx, c.timing.InterCommand) != nil {
		return
	}
	volResp, volOK := c.query(ctx, orei.QUERY_AUDIO_VOLUME, RetryPolicy{MaxAttempts: 2, Backoff: c.timing.VolumeRetry})
	if c.wait(ctx, c.timing.InterCommand) != nil {
		return
	}
	muteResp, muteOK := c.query(ctx, orei.QUERY_AUDIO_MUTE, NoRetry)

	c.state.UpdateAudio(func(a *Audio) {
		if !srcOK && !volOK && !muteOK {
			return
		}
		if src, ok := orei.ParseAudioSource(srcResp); ok {
			a.Source = src
		}
		if v, ok := orei.ParseVolume(volResp); ok {
			a.Volume = v
		}
		if muted, ok := orei.ParseMute(muteResp); ok {
			a.Muted = muted
		}
		a.Known = true
	})
	c.publish(EventAudioChanged)
}

// LoadOutput reads resolution and HDCP.
func (c *Controller) LoadOutput(ctx context.Context) {
	resResp, hdcpResp := c.queryPair(ctx, orei.QUERY_OUTPUT_RES, orei.QUERY_OUTPUT_HDCP)
	c.state.UpdateOutput(func(o *Output) {
		if code, ok := orei.ParseResolution(resResp); ok {
			o.Resolution = code
		}
		if h, ok := orei.ParseHDCP(hdcpResp); ok {
			o.HDCP = h
		}
	})
	c.publish(EventOutputChanged)
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// SetMode switches the display mode, then reloads the new mode's settings
// and window inputs before announcing the change.
func (c *Controller) SetMode(ctx context.Context, m layout.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", layout.ErrInvalidMode, int(m))
	}
	if err := c.apply(ctx, orei.SetMultiview(m)); err != nil {
		return err
	}
	c.transition(ctx, m, true)
	return ctx.Err()
}

// SetWindowInput routes input to window.
func (c *Controller) SetWindowInput(ctx context.Context, window, input int) error {
	if window < 1 || window > layout.MaxWindows {
		return fmt.Errorf("window %d out of range 1-%d", window, layout.MaxWindows)
	}
	if input < 1 || input > layout.MaxInputs {
		return fmt.Errorf("input %d out of range 1-%d", input, layout.MaxInputs)
	}
	if err := c.apply(ctx, orei.SetWindowInput(window, input)); err != nil {
		return err
	}
	c.state.SetInput(window, input)
	c.publish(EventWindowInputsChanged)
	return nil
}

func (c *Controller) SetPIPPosition(ctx context.Context, p layout.PIPPosition) error {
	if !p.Valid() {
		return fmt.Errorf("invalid PIP position %d", int(p))
	}
	if err := c.apply(ctx, orei.SetPIPPosition(p)); err != nil {
		return err
	}
	c.state.UpdateSettings(func(s *layout.Settings) { s.PIP.Position = p })
	c.publish(EventSettingsChanged)
	return nil
}

func (c *Controller) SetPIPSize(ctx context.Context, sz layout.PIPSize) error {
	if !sz.Valid() {
		return fmt.Errorf("invalid PIP size %d", int(sz))
	}
	if err := c.apply(ctx, orei.SetPIPSize(sz)); err != nil {
		return err
	}
	c.state.UpdateSettings(func(s *layout.Settings) { s.PIP.Size = sz })
	c.publish(EventSettingsChanged)
	return nil
}

// SetSubMode changes the sub-layout of the current split mode.
func (c *Controller) SetSubMode(ctx context.Context, sub int) error {
	m := c.state.Snapshot().Mode
	if !m.IsSplit() {
		return fmt.Errorf("%s has no sub-mode", m.Label())
	}
	if sub < 1 || sub > m.SubModeCount() {
		return fmt.Errorf("sub-mode %d out of range 1-%d for %s", sub, m.SubModeCount(), m.Label())
	}
	if err := c.apply(ctx, orei.SetSubMode(m, sub)); err != nil {
		return err
	}
	c.state.UpdateSettings(func(s *layout.Settings) {
		sp, _ := s.Split(m)
		sp.SubMode = sub
		_ = s.SetSplit(m, sp)
	})
	c.publish(EventSettingsChanged)
	return nil
}

// SetAspect changes the aspect of the current split mode.
func (c *Controller) SetAspect(ctx context.Context, a layout.Aspect) error {
	m := c.state.Snapshot().Mode
	if !m.IsSplit() {
		return fmt.Errorf("%s has no aspect setting", m.Label())
	}
	if !a.Valid() {
		return fmt.Errorf("invalid aspect %d", int(a))
	}
	if err := c.apply(ctx, orei.SetAspect(m, a)); err != nil {
		return err
	}
	c.state.UpdateSettings(func(s *layout.Settings) {
		sp, _ := s.Split(m)
		sp.Aspect = a
		_ = s.SetSplit(m, sp)
	})
	c.publish(EventSettingsChanged)
	return nil
}

// SetAudioSource routes output audio; 0 follows the selected window.
func (c *Controller) SetAudioSource(ctx context.Context, source int) error {
	if source < orei.AUDIO_FOLLOW_WINDOW || source > orei.AUDIO_SOURCE_MAX {
		return fmt.Errorf("audio source %d out of range 0-%d", source, orei.AUDIO_SOURCE_MAX)
	}
	if err := c.apply(ctx, orei.SetAudioSource(source)); err != nil {
		return err
	}
	c.state.UpdateAudio(func(a *Audio) { a.Source = source })
	c.publish(EventAudioChanged)
	return nil
}

func (c *Controller) SetVolume(ctx context.Context, volume int) error {
	if volume < orei.VOLUME_MIN || volume > orei.VOLUME_MAX {
		return fmt.Errorf("volume %d out of range %d-%d", volume, orei.VOLUME_MIN, orei.VOLUME_MAX)
	}
	if err := c.apply(ctx, orei.SetVolume(volume)); err != nil {
		return err
	}
	c.state.UpdateAudio(func(a *Audio) { a.Volume = volume })
	c.publish(EventAudioChanged)
	return nil
}

func (c *Controller) SetMute(ctx context.Context, muted bool) error {
	if err := c.apply(ctx, orei.SetMute(muted)); err != nil {
		return err
	}
	c.state.UpdateAudio(func(a *Audio) { a.Muted = muted })
	c.publish(EventAudioChanged)
	return nil
}

func (c *Controller) SetResolution(ctx context.Context, code int) error {
	if code < orei.RESOLUTION_MIN || code > orei.RESOLUTION_MAX {
		return fmt.Errorf("resolution code %d out of range %d-%d", code, orei.RESOLUTION_MIN, orei.RESOLUTION_MAX)
	}
	if err := c.apply(ctx, orei.SetResolution(code)); err != nil {
		return err
	}
	c.state.UpdateOutput(func(o *Output) { o.Resolution = code })
	c.publish(EventOutputChanged)
	return nil
}

func (c *Controller) SetHDCP(ctx context.Context, h orei.HDCP) error {
	if !h.Valid() {
		return fmt.Errorf("invalid HDCP code %d", int(h))
	}
	if err := c.apply(ctx, orei.SetHDCP(h)); err != nil {
		return err
	}
	c.state.UpdateOutput(func(o *Output) { o.HDCP = h })
	c.publish(EventOutputChanged)
	return nil
}

// SetPower switches the device on or off, waits for it to settle and
// re-reads the power state. Switching on also waits for the device to boot
// and then runs a full refresh.
func (c *Controller) SetPower(ctx context.Context, on bool) error {
	if err := c.apply(ctx, orei.SetPower(on)); err != nil {
		return err
	}
	if err := c.wait(ctx, c.timing.PowerSettle); err != nil {
		return err
	}
	c.CheckPower(ctx)
	if !on {
		return ctx.Err()
	}

	if err := c.wait(ctx, c.timing.BootSettle); err != nil {
		return err
	}
	_, err := c.Refresh(ctx)
	return err
}

// TogglePower reads the current power state and sends the inverse.
func (c *Controller) TogglePower(ctx context.Context) error {
	resp, err := c.send(ctx, orei.QUERY_POWER, false, NoRetry)
	if err != nil && !transport.IsNoResponse(err) {
		return err
	}
	on, _ := orei.ParsePower(resp)
	return c.SetPower(ctx, !on)
}
