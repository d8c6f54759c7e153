package migrate

import "context"

func (d *Driver) heartbeat(ctx context.Context) {
	if d.opts.Heartbeat <= 0 {
		return
	}
	t := d.clock.Ticker(d.opts.Heartbeat)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("heartbeat stopped")
			return
		case <-t.C:
			log.Info(HeartbeatLine(d.clock.Since(d.started), d.attempts.Load(), d.failures.Load()))
		}
	}
}
