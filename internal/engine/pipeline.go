package engine

import (
	"log"
	"sync"
	"time"

	"github.com/BaldrVivaldelli/thoth-trading/internal/book"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// OrderValidator is the contract of the validation stage: a pure
// accept/reject decision with no book side effects.
type OrderValidator interface {
	Validate(order *models.Order) bool
}

// RiskChecker is the contract of the risk stage. UpdatePositions is
// applied after the match stage completes an order.
type RiskChecker interface {
	CheckRisk(order *models.Order) bool
	UpdatePositions(order *models.Order)
}

// task carries one order through the pipeline together with its
// completion handle, so no stage ever needs a shared lookup table to
// find the submitter's future.
type task struct {
	order    *models.Order
	future   *OrderFuture
	accepted time.Time
}

// pipeline is the staged order processor: a bounded multi-producer
// ingress feeding three single-consumer stages chained by channels,
//
//	ingress -> validate -> risk -> match
//
// Each stage runs on its own goroutine and consumes in arrival order, so
// orders keep a total order end to end; per-symbol match order follows
// from it. A stage rejecting an order resolves the future immediately
// and the order never reaches the stages behind it.
type pipeline struct {
	ingress chan *task
	books   *book.Registry

	validator OrderValidator
	risk      RiskChecker

	// Hooks wired by the engine; both may be nil.
	onTrade    func(trade *models.Trade)
	onComplete func(order *models.Order, resting bool, elapsed time.Duration)
	onReject   func(stage string)

	wg sync.WaitGroup
}

func newPipeline(queueSize int, books *book.Registry, v OrderValidator, r RiskChecker) *pipeline {
	return &pipeline{
		ingress:   make(chan *task, queueSize),
		books:     books,
		validator: v,
		risk:      r,
	}
}

// start launches the three stage goroutines. The stage chain shuts down
// from the front: closing ingress drains validate, which closes the risk
// channel, and so on until the match stage exits.
func (p *pipeline) start() {
	riskCh := make(chan *task, cap(p.ingress))
	matchCh := make(chan *task, cap(p.ingress))

	p.wg.Add(3)
	go p.validateStage(p.ingress, riskCh)
	go p.riskStage(riskCh, matchCh)
	go p.matchStage(matchCh)
}

// stop closes the ingress and waits for every in-flight order to reach a
// terminal resolution.
func (p *pipeline) stop() {
	close(p.ingress)
	p.wg.Wait()
}

// submit blocks while the bounded ingress is full; callers must not
// assume unbounded queuing depth.
func (p *pipeline) submit(t *task) {
	t.accepted = time.Now()
	p.ingress <- t
}

// depth returns the number of orders waiting in the ingress queue.
func (p *pipeline) depth() int {
	return len(p.ingress)
}

func (p *pipeline) validateStage(in <-chan *task, out chan<- *task) {
	defer p.wg.Done()
	defer close(out)

	for t := range in {
		p.runStage("validate", t, func(t *task) bool {
			if !p.validator.Validate(t.order) {
				return false
			}
			t.order = t.order.WithStatus(models.StatusValidated)
			return true
		}, out)
	}
}

func (p *pipeline) riskStage(in <-chan *task, out chan<- *task) {
	defer p.wg.Done()
	defer close(out)

	for t := range in {
		p.runStage("risk", t, func(t *task) bool {
			return p.risk.CheckRisk(t.order)
		}, out)
	}
}

func (p *pipeline) matchStage(in <-chan *task) {
	defer p.wg.Done()

	for t := range in {
		p.runMatch(t)
	}
}

// runStage executes one accept/reject stage for one task, converting a
// rejection or a panic into a terminal REJECTED resolution and
// forwarding accepted tasks downstream.
func (p *pipeline) runStage(name string, t *task, fn func(*task) bool, out chan<- *task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: %s stage panic for order %s: %v", name, t.order.OrderID, r)
			p.reject(name, t)
		}
	}()

	if !fn(t) {
		p.reject(name, t)
		return
	}
	out <- t
}

// runMatch drives the book for one order and resolves the future with
// the post-match state. A panic here rejects the one affected order; it
// never stalls the stage or sibling orders.
func (p *pipeline) runMatch(t *task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: match stage panic for order %s: %v", t.order.OrderID, r)
			p.reject("match", t)
		}
	}()

	b := p.books.Get(t.order.Symbol)
	trades, final, resting := b.SubmitOrder(t.order)

	for _, trade := range trades {
		if p.onTrade != nil {
			p.onTrade(trade)
		}
	}

	p.risk.UpdatePositions(final)

	if p.onComplete != nil {
		p.onComplete(final, resting, time.Since(t.accepted))
	}
	t.future.resolve(final)
}

func (p *pipeline) reject(stage string, t *task) {
	if p.onReject != nil {
		p.onReject(stage)
	}
	t.future.resolve(t.order.WithStatus(models.StatusRejected))
}
