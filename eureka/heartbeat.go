package eureka

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/eurekaclient/httpclient"
	"github.com/kbukum/eurekaclient/logger"
)

// HeartbeatOutcome classifies a heartbeat attempt.
type HeartbeatOutcome int

const (
	HeartbeatOK HeartbeatOutcome = iota
	HeartbeatRejected
	HeartbeatUnreachable
)

func (o HeartbeatOutcome) String() string {
	switch o {
	case HeartbeatOK:
		return "ok"
	case HeartbeatRejected:
		return "rejected"
	case HeartbeatUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// HeartbeatResult describes one heartbeat. It is informational; heartbeat
// failures are never returned as errors.
type HeartbeatResult struct {
	Outcome HeartbeatOutcome
	// StatusCode is set when Outcome is HeartbeatOK or HeartbeatRejected.
	StatusCode int
	// TransportCode is set when Outcome is HeartbeatUnreachable.
	TransportCode httpclient.ErrorCode
	At            time.Time
}

// OK reports whether the registry accepted the heartbeat.
func (r HeartbeatResult) OK() bool { return r.Outcome == HeartbeatOK }

// Heartbeat renews the lease with a PUT. Failures are logged and reported
// in the result, never returned.
func (c *Client) Heartbeat(ctx context.Context) HeartbeatResult {
	ctx, span := c.startSpan(ctx, SpanHeartbeat, AttrInstanceID.String(c.cfg.InstanceID()))
	start := time.Now()
	c.console.Printf("Sending heartbeat...")

	var res HeartbeatResult
	resp, err := c.send(ctx, http.MethodPut, c.instancePath(), nil)
	switch {
	case err != nil:
		code := httpclient.CodeOf(err)
		res = HeartbeatResult{Outcome: HeartbeatUnreachable, TransportCode: code, At: start}
		c.console.Printf("Heartbeat failed because of connection error... (code: %s)", code)
		c.log.WithError(err).Warn("eureka heartbeat failed", logger.Fields(logger.FieldInstanceID, c.cfg.InstanceID()))
		c.metrics.RecordOperation(ctx, OpHeartbeat, OutcomeError, time.Since(start))
	case resp.StatusCode != http.StatusOK:
		res = HeartbeatResult{Outcome: HeartbeatRejected, StatusCode: resp.StatusCode, At: start}
		c.console.Printf("Heartbeat failed... (code: %d)", resp.StatusCode)
		c.log.Warn("eureka heartbeat rejected", logger.Fields(
			logger.FieldInstanceID, c.cfg.InstanceID(), logger.FieldStatus, resp.StatusCode,
		))
		c.metrics.RecordOperation(ctx, OpHeartbeat, OutcomeRejected, time.Since(start))
	default:
		res = HeartbeatResult{Outcome: HeartbeatOK, StatusCode: resp.StatusCode, At: start}
		c.log.Debug("eureka heartbeat sent", logger.Fields(logger.FieldInstanceID, c.cfg.InstanceID()))
		c.metrics.RecordOperation(ctx, OpHeartbeat, OutcomeSuccess, time.Since(start))
	}

	span.SetAttributes(AttrOutcome.String(res.Outcome.String()))
	if res.StatusCode != 0 {
		span.SetAttributes(AttrStatusCode.Int(res.StatusCode))
	}
	if res.Outcome == HeartbeatRejected {
		span.SetStatus(codes.Error, "heartbeat rejected")
	}
	endSpan(span, err)
	c.lastBeat.Store(&res)
	return res
}

// Start registers the instance and then sends a heartbeat every
// HeartbeatInterval seconds until ctx is done. A registration failure is
// returned immediately; otherwise Start returns ctx.Err(). Start does not
// de-register.
func (c *Client) Start(ctx context.Context) error {
	if err := c.Register(ctx); err != nil {
		return err
	}
	return c.heartbeatLoop(ctx)
}

func (c *Client) heartbeatLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Heartbeat(ctx)
		c.beats.Add(1)

		interval := time.Duration(c.cfg.HeartbeatInterval()) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.after(interval):
		}
	}
}

// LastHeartbeat returns the most recent heartbeat result and whether one
// has been sent.
func (c *Client) LastHeartbeat() (HeartbeatResult, bool) {
	res := c.lastBeat.Load()
	if res == nil {
		return HeartbeatResult{}, false
	}
	return *res, true
}
