// Package core implements the execution engine's three long-lived threads
// (§4.H): Receiver (ingress → dedupe → adapter dispatch), Publisher (drains
// the publish queue to the egress socket), and Stats (periodic counter
// logging). Lifecycle follows New() → Start() → [runs] → Stop(), the same
// shape as the teacher's internal/engine.Engine.
package core

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/latentspeed/execengine/internal/adapter"
	"github.com/latentspeed/execengine/internal/clock"
	"github.com/latentspeed/execengine/internal/container"
	"github.com/latentspeed/execengine/internal/execdto"
	"github.com/latentspeed/execengine/internal/normalize"
	"github.com/latentspeed/execengine/internal/router"
	"github.com/latentspeed/execengine/internal/tracker"
)

// Config holds the tunables for an Engine. Zero values are replaced with
// the defaults below by New.
type Config struct {
	PendingCapacity    int
	ProcessedCapacity  int
	OrderPoolCapacity  int
	PublishQueueCap    int
	CallbackQueueCap   int
	ReceiverSpinDelay  time.Duration
	StatsInterval      time.Duration
	PublisherDrainWait time.Duration
	CallTimeout        time.Duration

	// PinThreads enables core pinning and SCHED_FIFO real-time scheduling
	// for the Receiver and Publisher threads (§4.B). PinReceiverCore and
	// PinPublisherCore are only consulted when PinThreads is true; the
	// zero value of Config leaves both threads unpinned, matching the
	// default scheduling policy tests run under.
	PinThreads       bool
	PinReceiverCore  int
	PinPublisherCore int
	RealtimePriority int
}

func (c Config) withDefaults() Config {
	if c.PendingCapacity == 0 {
		c.PendingCapacity = 4096
	}
	if c.ProcessedCapacity == 0 {
		c.ProcessedCapacity = c.PendingCapacity * 4
	}
	if c.OrderPoolCapacity == 0 {
		c.OrderPoolCapacity = c.PendingCapacity
	}
	if c.PublishQueueCap == 0 {
		c.PublishQueueCap = 8192
	}
	if c.CallbackQueueCap == 0 {
		c.CallbackQueueCap = 2048
	}
	if c.ReceiverSpinDelay == 0 {
		c.ReceiverSpinDelay = 200 * time.Microsecond
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = 10 * time.Second
	}
	if c.PublisherDrainWait == 0 {
		c.PublisherDrainWait = 500 * time.Millisecond
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 5 * time.Second
	}
	if c.PinThreads && c.RealtimePriority == 0 {
		c.RealtimePriority = 80
	}
	return c
}

// venueEvent wraps a single adapter callback (an order update or a fill) so
// both kinds can funnel through one ordered per-venue mini-queue, preserving
// the order the adapter delivered them in.
type venueEvent struct {
	isFill bool
	order  adapter.OrderUpdate
	fill   adapter.FillData
}

// venueCallbacks is the per-venue mini-queue named in §5/§9: adapter
// implementations may invoke SetOrderUpdateCallback/SetFillCallback from any
// number of concurrent adapter-owned goroutines (internal/adapter's
// contract), so queue is a container.Queue guarded by mu on the push side —
// serializing concurrent producers down to the single logical producer a
// container.Queue requires. Only the Receiver goroutine ever calls TryPop,
// so the consumer side needs no lock.
type venueCallbacks struct {
	adapter adapter.Adapter

	mu    sync.Mutex
	queue *container.Queue[venueEvent]
}

// Engine is the execution core: ingress → tracker → router/adapter →
// egress, with the Receiver/Publisher/Stats thread model from §5.
type Engine struct {
	cfg     Config
	ingress Ingress
	egress  Egress
	router  *router.Router
	tracker *tracker.Tracker
	pool    *container.Pool[tracker.InFlightOrder]
	queue   *container.Queue[publishMessage]
	venues  []*venueCallbacks
	clk     *clock.Clock
	logger  *slog.Logger
	stats   *Stats
	snap    *SnapshotWriter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires an Engine. The caller has already registered every adapter on
// r before calling New, mirroring the teacher's pattern of building
// sub-components in New and starting goroutines only in Start.
func New(cfg Config, ingress Ingress, egress Egress, r *router.Router, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:     cfg,
		ingress: ingress,
		egress:  egress,
		router:  r,
		tracker: tracker.New(cfg.PendingCapacity, cfg.ProcessedCapacity),
		pool:    container.NewPool[tracker.InFlightOrder](cfg.OrderPoolCapacity),
		queue:   container.NewQueue[publishMessage](cfg.PublishQueueCap),
		clk:     clock.New(),
		logger:  logger,
		stats:   newStats(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the Receiver, Publisher, and Stats goroutines.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.cfg.PinThreads {
			clock.PinReceiverAndPublisher(e.logger, e.cfg.PinReceiverCore, e.cfg.RealtimePriority)
		}
		e.receiverLoop()
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.cfg.PinThreads {
			clock.PinReceiverAndPublisher(e.logger, e.cfg.PinPublisherCore, e.cfg.RealtimePriority)
		}
		e.publisherLoop()
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.statsLoop()
	}()
}

// Stop signals all three threads to exit and waits for them, bounding the
// Publisher's final drain to cfg.PublisherDrainWait per §5.
func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

// Stats exposes the engine's counters (used by the Stats thread's own
// logging and by tests).
func (e *Engine) Stats() Snapshot {
	return e.stats.Snapshot()
}

// SetSnapshotWriter enables periodic diagnostic dumps from the Stats
// thread. Optional: an Engine with no writer configured simply skips the
// dump every tick.
func (e *Engine) SetSnapshotWriter(w *SnapshotWriter) {
	e.snap = w
}

// RegisterVenueCallbacks wires a's order-update, fill, and error callbacks
// to the engine. Must be called once per adapter before Start, typically
// right after router.RegisterAdapter.
//
// Order-update and fill callbacks don't touch the tracker or publish queue
// directly: they push onto a's per-venue mini-queue (mutex-guarded, since
// adapters may call back from more than one goroutine) and the Receiver
// goroutine drains it on every loop iteration. That keeps the Receiver the
// only goroutine that ever pushes onto the shared SPSC publish queue.
func (e *Engine) RegisterVenueCallbacks(a adapter.Adapter) {
	vc := &venueCallbacks{
		adapter: a,
		queue:   container.NewQueue[venueEvent](e.cfg.CallbackQueueCap),
	}
	e.venues = append(e.venues, vc)

	a.SetOrderUpdateCallback(func(u adapter.OrderUpdate) {
		vc.mu.Lock()
		ok := vc.queue.TryPush(venueEvent{order: u})
		vc.mu.Unlock()
		if !ok {
			e.stats.recordQueueFull()
			e.logger.Warn("venue callback queue full, dropping order update", "venue", a.Name(), "cl_id", u.ClID)
		}
	})
	a.SetFillCallback(func(f adapter.FillData) {
		vc.mu.Lock()
		ok := vc.queue.TryPush(venueEvent{isFill: true, fill: f})
		vc.mu.Unlock()
		if !ok {
			e.stats.recordQueueFull()
			e.logger.Warn("venue callback queue full, dropping fill", "venue", a.Name(), "cl_id", f.ClID)
		}
	})
	a.SetErrorCallback(func(msg string) {
		e.logger.Warn("adapter reported an error", "venue", a.Name(), "error", msg)
	})
}

// RehydrateFromVenue queries a's open orders across the three categories
// named in §4.G (linear, inverse, spot) and seeds Pending with each one,
// tagged external. Call after a successful Connect, before Start.
func (e *Engine) RehydrateFromVenue(ctx context.Context, a adapter.Adapter) {
	for _, category := range []string{"linear", "inverse", "spot"} {
		open, err := a.ListOpenOrders(ctx, adapter.ListFilter{Category: category})
		if err != nil {
			e.logger.Warn("list_open_orders failed during rehydration", "venue", a.Name(), "category", category, "error", err)
			continue
		}
		for _, o := range open {
			order := &execdto.ExecutionOrder{
				ClID:  o.ClID,
				Venue: a.Name(),
			}
			if !e.tracker.RehydrateExternal(o.ClID, order, o.ExchangeOrderID, o.Status) {
				e.logger.Warn("rehydration dropped: pending map full", "venue", a.Name(), "cl_id", o.ClID)
			}
		}
	}
}

func (e *Engine) receiverLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return
		default:
		}

		didWork := e.drainVenueCallbacks()

		raw, ok := e.ingress.TryRecv()
		if !ok {
			if !didWork {
				time.Sleep(e.cfg.ReceiverSpinDelay)
			}
			continue
		}
		didWork = true
		e.handleMessage(raw)
	}
}

// drainVenueCallbacks dispatches every callback event queued by every
// registered venue, preserving each venue's fill/order-update arrival order.
// Only the Receiver goroutine calls this, so it's the single point where
// onOrderUpdate/onFill run and the single producer onto e.queue.
func (e *Engine) drainVenueCallbacks() bool {
	didWork := false
	for _, vc := range e.venues {
		for {
			ev, ok := vc.queue.TryPop()
			if !ok {
				break
			}
			didWork = true
			if ev.isFill {
				e.onFill(vc.adapter, ev.fill)
			} else {
				e.onOrderUpdate(vc.adapter, ev.order)
			}
		}
	}
	return didWork
}

func (e *Engine) handleMessage(raw []byte) {
	receiveTsNS := e.clk.NowNS()

	order, err := execdto.ParseExecutionOrder(raw)
	if err != nil {
		e.logger.Warn("rejecting malformed ingress message", "error", err)
		e.publishReport(&execdto.ExecutionReport{
			Version:    1,
			Status:     execdto.ReportRejected,
			ReasonCode: string(normalize.ReasonInvalidParams),
			ReasonText: err.Error(),
			TsNS:       e.clk.NowNS(),
			Tags:       map[string]string{},
		})
		return
	}

	switch order.Action {
	case execdto.ActionPlace:
		e.handlePlace(order, receiveTsNS)
	case execdto.ActionCancel:
		e.handleCancel(order)
	case execdto.ActionReplace:
		e.handleReplace(order)
	}
}

func (e *Engine) handlePlace(order *execdto.ExecutionOrder, receiveTsNS int64) {
	if decision := e.tracker.CheckPlace(order.ClID); decision == tracker.PlaceDuplicatePending {
		e.logger.Warn("ignoring duplicate place for a still-pending cl_id", "cl_id", order.ClID)
		return
	}

	a, ok := e.router.Route(order.Venue)
	if !ok {
		e.rejectPlace(order, normalize.ReasonVenueReject, "unknown venue: "+order.Venue, receiveTsNS)
		return
	}

	handle, slot, ok := e.pool.Get()
	if !ok {
		e.rejectPlace(order, normalize.ReasonVenueReject, "order pool exhausted", receiveTsNS)
		return
	}
	*slot = tracker.InFlightOrder{Order: order, PoolHandle: handle}

	sym, symOK := normalize.ParseSymbol(order.Place.Symbol)
	symbolForAdapter := order.Place.Symbol
	if symOK {
		symbolForAdapter = sym.Hyphen()
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.CallTimeout)
	defer cancel()

	req := adapter.OrderRequest{
		ClID:        order.ClID,
		Symbol:      symbolForAdapter,
		Side:        string(order.Place.Side),
		OrderType:   string(order.Place.OrderType),
		TimeInForce: strings.ToLower(string(order.Place.TimeInForce)),
		Size:        order.Place.Size.String(),
		ReduceOnly:  order.Place.ReduceOnly,
		Params:      order.Place.Params,
	}
	if order.Place.Price != nil {
		req.Price = order.Place.Price.String()
	}
	if order.Place.StopPrice != nil {
		req.StopPrice = order.Place.StopPrice.String()
	}

	resp, err := a.PlaceOrder(ctx, req)
	if err != nil || !resp.Success {
		e.pool.Put(handle)
		reason := normalize.ReasonNetworkError
		msg := resp.Message
		if err == nil {
			reason = a.ReasonTable().Map(resp.Message)
		} else {
			msg = err.Error()
		}
		e.rejectPlace(order, reason, msg, receiveTsNS)
		return
	}

	slot.ExchangeOrderID = resp.ExchangeOrderID
	if !e.tracker.RecordPlace(order.ClID, slot, receiveTsNS) {
		e.pool.Put(handle)
		e.rejectPlace(order, normalize.ReasonVenueReject, "pending map exhausted", receiveTsNS)
		return
	}

	e.publishReport(&execdto.ExecutionReport{
		Version:         1,
		ClID:            order.ClID,
		Status:          execdto.ReportAccepted,
		ExchangeOrderID: resp.ExchangeOrderID,
		ReasonCode:      string(normalize.ReasonOK),
		ReasonText:      "order placed",
		TsNS:            e.clk.NowNS(),
		Tags:            map[string]string{"venue": a.Name()},
	})
	e.stats.recordOrder(e.clk.NowNS() - receiveTsNS)
}

func (e *Engine) rejectPlace(order *execdto.ExecutionOrder, reason normalize.Reason, text string, receiveTsNS int64) {
	e.publishReport(&execdto.ExecutionReport{
		Version:    1,
		ClID:       order.ClID,
		Status:     execdto.ReportRejected,
		ReasonCode: string(reason),
		ReasonText: text,
		TsNS:       e.clk.NowNS(),
		Tags:       map[string]string{"venue": order.Venue},
	})
	e.stats.recordOrder(e.clk.NowNS() - receiveTsNS)
}

func (e *Engine) handleCancel(order *execdto.ExecutionOrder) {
	targetID := order.Cancel.ClIDToCancel
	a, ok := e.router.Route(order.Venue)
	if !ok {
		e.publishReport(&execdto.ExecutionReport{
			Version: 1, ClID: targetID, Status: execdto.ReportRejected,
			ReasonCode: string(normalize.ReasonVenueReject), ReasonText: "unknown venue: " + order.Venue,
			TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": order.Venue},
		})
		return
	}

	symbol := order.Cancel.Symbol
	exchangeOrderID := order.Cancel.ExchangeOrderID
	if in, ok := e.tracker.Get(targetID); ok {
		if exchangeOrderID == "" {
			exchangeOrderID = in.ExchangeOrderID
		}
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.CallTimeout)
	defer cancel()
	resp, err := a.CancelOrder(ctx, adapter.CancelRequest{
		ClIDToCancel:    targetID,
		Symbol:          symbol,
		ExchangeOrderID: exchangeOrderID,
	})

	// "not found" is rewritten to a successful synthetic cancel per §4.H
	// and §7: the venue has no memory of the order, so from the engine's
	// perspective it is already not live.
	notFound := err == nil && !resp.Success && isNotFoundMessage(resp.Message)

	if err != nil {
		e.publishReport(&execdto.ExecutionReport{
			Version: 1, ClID: targetID, Status: execdto.ReportRejected,
			ReasonCode: string(normalize.ReasonNetworkError), ReasonText: err.Error(),
			TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": a.Name()},
		})
		return
	}

	if resp.Success || notFound {
		if in, ok := e.tracker.Get(targetID); ok && in.PoolHandle >= 0 {
			e.pool.Put(in.PoolHandle)
		}
		e.tracker.MarkTerminal(targetID)
		e.publishReport(&execdto.ExecutionReport{
			Version: 1, ClID: targetID, Status: execdto.ReportCanceled,
			ReasonCode: string(normalize.ReasonOK), ReasonText: "canceled",
			TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": a.Name()},
		})
		return
	}

	e.publishReport(&execdto.ExecutionReport{
		Version: 1, ClID: targetID, Status: execdto.ReportRejected,
		ReasonCode: string(a.ReasonTable().Map(resp.Message)), ReasonText: resp.Message,
		TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": a.Name()},
	})
}

// isNotFoundMessage reports whether a venue's rejection text indicates the
// order is simply unknown to it, as opposed to a genuine cancel failure.
func isNotFoundMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "not found")
}

func (e *Engine) handleReplace(order *execdto.ExecutionOrder) {
	targetID := order.Replace.ClIDToReplace
	a, ok := e.router.Route(order.Venue)
	if !ok {
		e.publishReport(&execdto.ExecutionReport{
			Version: 1, ClID: targetID, Status: execdto.ReportRejected,
			ReasonCode: string(normalize.ReasonVenueReject), ReasonText: "unknown venue: " + order.Venue,
			TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": order.Venue},
		})
		return
	}

	req := adapter.ModifyRequest{ClIDToReplace: targetID}
	if order.Replace.NewPrice != nil {
		req.NewPrice = order.Replace.NewPrice.String()
	}
	if order.Replace.NewSize != nil {
		req.NewSize = order.Replace.NewSize.String()
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.CallTimeout)
	defer cancel()
	resp, err := a.ModifyOrder(ctx, req)
	if err != nil || !resp.Success {
		reason := normalize.ReasonNetworkError
		msg := resp.Message
		if err == nil {
			reason = a.ReasonTable().Map(resp.Message)
		} else {
			msg = err.Error()
		}
		e.publishReport(&execdto.ExecutionReport{
			Version: 1, ClID: targetID, Status: execdto.ReportRejected,
			ReasonCode: string(reason), ReasonText: msg,
			TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": a.Name()},
		})
		return
	}

	e.tracker.UpdateExchangeOrderID(targetID, resp.ExchangeOrderID)
	e.publishReport(&execdto.ExecutionReport{
		Version: 1, ClID: targetID, Status: execdto.ReportReplaced,
		ExchangeOrderID: resp.ExchangeOrderID,
		ReasonCode:      string(normalize.ReasonOK), ReasonText: "replaced",
		TsNS: e.clk.NowNS(), Tags: map[string]string{"venue": a.Name()},
	})
}

func (e *Engine) onOrderUpdate(a adapter.Adapter, u adapter.OrderUpdate) {
	in, known := e.tracker.Get(u.ClID)
	if !known {
		ctx, cancel := context.WithTimeout(e.ctx, e.cfg.CallTimeout)
		resp, err := a.QueryOrder(ctx, u.ClID)
		cancel()
		if err == nil && resp.Success {
			canonical, _ := a.StatusTable().Map(resp.Message)
			if !canonical.Terminal() {
				e.tracker.RehydrateExternal(u.ClID, &execdto.ExecutionOrder{ClID: u.ClID, Venue: a.Name()}, resp.ExchangeOrderID, resp.Message)
			}
		}
	}

	status, ok := a.StatusTable().Map(u.RawStatus)
	if !ok {
		e.logger.Warn("unknown raw order status, mapping to rejected", "venue", a.Name(), "raw_status", u.RawStatus)
		status = normalize.StatusRejected
	}
	reason := a.ReasonTable().Map(u.RawReason)
	if u.RawReason == "" && status != normalize.StatusRejected {
		reason = normalize.ReasonOK
	}

	// ReportStatus's wire vocabulary is the four-value accepted/rejected/
	// canceled/replaced enum, but open/partially_filled/filled/expired
	// updates still need to reach subscribers — §4.H only requires the
	// venue tag be set on every report, not that every status collapse
	// into those four. ReportStatus is a defined string type, so it can
	// carry the canonical Status vocabulary verbatim.
	e.publishReport(&execdto.ExecutionReport{
		Version:         1,
		ClID:            u.ClID,
		Status:          execdto.ReportStatus(status),
		ExchangeOrderID: u.ExchangeOrderID,
		ReasonCode:      string(reason),
		ReasonText:      u.RawReason,
		TsNS:            e.clk.NowNS(),
		Tags:            map[string]string{"venue": a.Name()},
	})

	if status.Terminal() {
		if known && in.PoolHandle >= 0 {
			e.pool.Put(in.PoolHandle)
		}
		e.tracker.MarkTerminal(u.ClID)
	} else if u.ExchangeOrderID != "" {
		e.tracker.UpdateExchangeOrderID(u.ClID, u.ExchangeOrderID)
		e.tracker.UpdateStatus(u.ClID, string(status))
	}
}

func (e *Engine) onFill(a adapter.Adapter, f adapter.FillData) {
	in, known := e.tracker.Get(f.ClID)

	executionType := string(execdto.ExecutionExternal)
	symbolOrPair := ""
	if known {
		if !in.External {
			executionType = string(execdto.ExecutionLive)
		}
		if in.Order != nil && in.Order.Place != nil {
			if sym, ok := normalize.ParseSymbol(in.Order.Place.Symbol); ok {
				symbolOrPair = sym.Hyphen()
			}
		}
	}

	price, _ := parseDecimalOrZero(f.Price)
	size, _ := parseDecimalOrZero(f.Size)
	fee, _ := parseDecimalOrZero(f.FeeAmount)

	tags := map[string]string{"venue": a.Name(), "execution_type": executionType}
	for k, v := range f.Tags {
		tags[k] = v
	}

	e.publishFill(&execdto.Fill{
		Version:         1,
		ClID:            f.ClID,
		ExchangeOrderID: f.ExchangeOrderID,
		ExecID:          f.ExecID,
		SymbolOrPair:    symbolOrPair,
		Price:           price,
		Size:            size,
		FeeCurrency:     f.FeeCurrency,
		FeeAmount:       fee,
		Liquidity:       execdto.Liquidity(f.Liquidity),
		TsNS:            e.clk.NowNS(),
		Tags:            tags,
	})
}

// parseDecimalOrZero parses a venue's decimal string, falling back to zero
// on malformed input rather than dropping the fill — a fee or price field
// an adapter can't format cleanly shouldn't block the rest of the report.
func parseDecimalOrZero(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (e *Engine) publishReport(r *execdto.ExecutionReport) {
	payload, err := execdto.MarshalExecutionReport(r)
	if err != nil {
		e.logger.Error("failed to marshal execution report", "error", err, "cl_id", r.ClID)
		return
	}
	e.enqueue(publishMessage{topic: "exec.report", payload: payload})
}

func (e *Engine) publishFill(f *execdto.Fill) {
	payload, err := execdto.MarshalFill(f)
	if err != nil {
		e.logger.Error("failed to marshal fill", "error", err, "cl_id", f.ClID)
		return
	}
	e.enqueue(publishMessage{topic: "exec.fill", payload: payload})
}

func (e *Engine) enqueue(m publishMessage) {
	if !e.queue.TryPush(m) {
		e.stats.recordQueueFull()
		e.logger.Warn("publish queue full, dropping message", "topic", m.topic)
		return
	}
	e.stats.recordQueueDepth(e.queue.Len())
}

func (e *Engine) publisherLoop() {
	for {
		m, ok := e.queue.TryPop()
		if !ok {
			select {
			case <-e.ctx.Done():
				e.drainOnShutdown()
				return
			default:
				time.Sleep(e.cfg.ReceiverSpinDelay)
				continue
			}
		}
		if err := e.egress.Publish(m.topic, m.payload); err != nil {
			e.logger.Error("egress publish failed", "topic", m.topic, "error", err)
		}
	}
}

func (e *Engine) drainOnShutdown() {
	deadline := time.Now().Add(e.cfg.PublisherDrainWait)
	for time.Now().Before(deadline) {
		m, ok := e.queue.TryPop()
		if !ok {
			return
		}
		if err := e.egress.Publish(m.topic, m.payload); err != nil {
			e.logger.Error("egress publish failed during shutdown drain", "topic", m.topic, "error", err)
		}
	}
}

func (e *Engine) statsLoop() {
	ticker := time.NewTicker(e.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.stats.recordPoolOccupied(e.pool.InUse())
			snap := e.stats.Snapshot()
			e.logger.Info("execution core stats",
				"orders_total", snap.OrdersTotal,
				"latency_min_ns", snap.LatencyMinNS,
				"latency_avg_ns", snap.LatencyAvgNS,
				"latency_max_ns", snap.LatencyMaxNS,
				"pool_peak_occupied", snap.PoolPeakOccupied,
				"queue_high_water", snap.QueueHighWater,
				"queue_full_count", snap.QueueFullCount,
			)
			if e.snap != nil {
				if err := e.snap.Write(snap, e.tracker.PendingSnapshot()); err != nil {
					e.logger.Warn("failed to write diagnostic snapshot", "error", err)
				}
			}
		}
	}
}
