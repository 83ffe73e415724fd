package kiosk

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dispenagua/kiosk/internal/vending"
)

// Backend is the part of the vending API the controller drives
type Backend interface {
	ListProducts(ctx context.Context) ([]vending.Product, error)
	CreateProduct(ctx context.Context, p vending.NewProduct) error
	GeneratePayment(ctx context.Context, id vending.ProductID) (string, error)
}

// Observer receives controller events for metrics
type Observer interface {
	ViewShown(view string)
	StaleResponse(flow string)
}

type nopObserver struct{}

func (nopObserver) ViewShown(string)     {}
func (nopObserver) StaleResponse(string) {}

// Flow names for request tokens
const (
	FlowList    = "list"
	FlowPayment = "payment"
	FlowCreate  = "create"
)

// Options configures a Controller
type Options struct {
	QR          QRRenderer
	HistorySize int
	Logger      *log.Entry
	Observer    Observer
}

// Controller owns the kiosk screen. Every operation updates the Screen and
// publishes it to subscribers; failures are shown on the Screen and logged,
// never returned.
//
// Each backend flow carries a token taken when the request starts. A response
// whose token is no longer the newest of its flow is dropped.
type Controller struct {
	backend  Backend
	qr       QRRenderer
	history  *History
	log      *log.Entry
	observer Observer

	mu        sync.Mutex
	screen    Screen
	products  []vending.Product
	selection *vending.ProductID

	listSeq    uint64
	paymentSeq uint64
	createSeq  uint64

	subs   map[int]chan Screen
	nextID int
}

// NewController creates a controller showing the product list
func NewController(backend Backend, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.NewEntry(log.StandardLogger())
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 50
	}

	c := &Controller{
		backend:  backend,
		qr:       opts.QR,
		history:  NewHistory(opts.HistorySize),
		log:      opts.Logger.WithField("component", "kiosk"),
		observer: opts.Observer,
		screen: Screen{
			Regions: make(map[Region]bool, len(Regions)),
			List:    ListArea{Cards: []Card{}, Message: MsgLoadingProducts, Kind: KindInfo},
		},
		subs: make(map[int]chan Screen),
	}
	c.applyView(ProductList)
	return c
}

// Initialize shows the product list and loads it
func (c *Controller) Initialize(ctx context.Context) {
	c.log.Info("Initializing kiosk")
	c.Show(ProductList)
	c.FetchProducts(ctx)
}

// Show makes the regions of view visible and hides every other region
func (c *Controller) Show(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.applyView(view) {
		return
	}
	c.publish()
}

// FetchProducts reloads the product list
func (c *Controller) FetchProducts(ctx context.Context) {
	c.mu.Lock()
	c.listSeq++
	token := c.listSeq
	c.screen.List = ListArea{Cards: []Card{}, Message: MsgLoadingProducts, Kind: KindInfo}
	c.publish()
	c.mu.Unlock()

	products, err := c.backend.ListProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.listSeq {
		c.dropStale(FlowList, token)
		return
	}

	if err != nil {
		c.logFailure(err, vending.CallListProducts).Error("Failed to load products")
		c.products = nil
		c.screen.List = ListArea{Cards: []Card{}, Message: MsgListError, Kind: KindError}
		c.publish()
		return
	}

	c.products = products
	if len(products) == 0 {
		c.screen.List = ListArea{Cards: []Card{}, Message: MsgNoProducts, Kind: KindInfo}
		c.publish()
		return
	}

	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewCard(p))
	}
	c.screen.List = ListArea{Cards: cards}
	c.log.WithField("count", len(cards)).Debug("Product list rendered")
	c.publish()
}

// SelectProduct starts the payment flow for p. The payment view and the
// "generating" status are published before the backend is called.
func (c *Controller) SelectProduct(ctx context.Context, p vending.Product) {
	c.mu.Lock()
	id := p.ID
	c.selection = &id
	c.screen.Selected = id
	c.paymentSeq++
	token := c.paymentSeq
	c.applyView(Payment)
	c.screen.Payment = PaymentArea{
		ProductName: p.Name,
		Status:      MsgGenerating,
		Kind:        KindInfo,
	}
	attemptID := c.history.Start(p)
	c.publish()
	c.mu.Unlock()

	c.log.WithField("product_id", id).Info("Generating payment code")
	payload, err := c.backend.GeneratePayment(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.paymentSeq {
		c.history.Complete(attemptID, AttemptSuperseded, payload, "")
		c.dropStale(FlowPayment, token)
		return
	}

	if err != nil {
		c.history.Complete(attemptID, AttemptFailed, "", err.Error())
		c.screen.Payment.Status = paymentErrorMessage(err)
		c.screen.Payment.Kind = KindError
		c.screen.Payment.QRImageURL = ""

		entry := c.logFailure(err, vending.CallGeneratePayment).WithField("product_id", id)
		var appErr *vending.AppError
		if errors.As(err, &appErr) {
			entry.Warn("Backend refused payment code")
		} else {
			entry.Error("Failed to generate payment code")
		}
		c.publish()
		return
	}

	c.history.Complete(attemptID, AttemptReady, payload, "")
	c.screen.Payment.QRImageURL = c.qr.ImageURL(payload)
	c.screen.Payment.Status = MsgScanToPay
	c.screen.Payment.Kind = KindSuccess
	c.publish()
}

// SubmitNewProduct creates a product from the raw form values. On success the
// form is cleared and the list reloaded; on failure the form keeps its values.
func (c *Controller) SubmitNewProduct(ctx context.Context, form ProductForm) {
	req := form.Parse()

	c.mu.Lock()
	c.createSeq++
	token := c.createSeq
	c.screen.Form = FormArea{
		Name:   form.Name,
		Volume: form.Volume,
		Price:  form.Price,
		Status: MsgSaving,
		Kind:   KindInfo,
	}
	c.publish()
	c.mu.Unlock()

	err := c.backend.CreateProduct(ctx, req)

	c.mu.Lock()
	if token != c.createSeq {
		c.dropStale(FlowCreate, token)
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.logFailure(err, vending.CallCreateProduct).WithField("name", form.Name).Error("Failed to create product")
		c.screen.Form.Status = createErrorMessage(err)
		c.screen.Form.Kind = KindError
		c.publish()
		c.mu.Unlock()
		return
	}

	c.log.WithField("name", form.Name).Info("Product created")
	c.screen.Form = FormArea{Status: MsgProductCreated, Kind: KindSuccess}
	c.publish()
	c.mu.Unlock()

	c.FetchProducts(ctx)
}

// BackToProducts returns to the product list and reloads it
func (c *Controller) BackToProducts(ctx context.Context) {
	c.Show(ProductList)
	c.FetchProducts(ctx)
}

// Snapshot returns a copy of the current screen
func (c *Controller) Snapshot() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen.clone()
}

// Selection returns the selected product id, if any
func (c *Controller) Selection() (vending.ProductID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return "", false
	}
	return *c.selection, true
}

// Product looks up a product of the last rendered list
func (c *Controller) Product(id vending.ProductID) (vending.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return vending.Product{}, false
}

// Attempts returns the recent payment attempts, newest first
func (c *Controller) Attempts() []Attempt {
	return c.history.Entries()
}

// Subscribe returns a channel receiving the current screen and every later
// one. A subscriber that falls behind only sees the newest screen. Call cancel
// to unsubscribe; it closes the channel.
func (c *Controller) Subscribe() (<-chan Screen, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Screen, 1)
	ch <- c.screen.clone()
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// applyView must be called with mu held
func (c *Controller) applyView(view View) bool {
	regions, ok := RegionsOf(view)
	if !ok {
		c.log.WithField("view", int(view)).Warn("Ignoring unknown view")
		return false
	}

	for _, r := range Regions {
		c.screen.Regions[r] = false
	}
	for _, r := range regions {
		c.screen.Regions[r] = true
	}
	c.screen.View = view
	c.observer.ViewShown(view.String())
	return true
}

// publish must be called with mu held
func (c *Controller) publish() {
	c.screen.Version++
	for _, ch := range c.subs {
		s := c.screen.clone()
		select {
		case ch <- s:
			continue
		default:
		}
		// drop the unread screen, keep the newest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (c *Controller) dropStale(flow string, token uint64) {
	c.log.WithFields(log.Fields{"flow": flow, "token": token}).Debug("Discarding stale response")
	c.observer.StaleResponse(flow)
}

func (c *Controller) logFailure(err error, call string) *log.Entry {
	return c.log.WithError(err).WithFields(log.Fields{
		"call":    call,
		"outcome": vending.Outcome(err),
	})
}

func paymentErrorMessage(err error) string {
	var appErr *vending.AppError
	if !errors.As(err, &appErr) {
		return MsgPaymentFailed
	}
	msg := appErr.Message
	if msg == "" {
		msg = MsgUnknownError
	}
	return fmt.Sprintf(MsgPaymentErrorFmt, msg)
}

func createErrorMessage(err error) string {
	if msg := vending.ErrorMessage(err); msg != "" {
		return fmt.Sprintf(MsgCreateErrorFmt, msg)
	}
	return MsgCreateFailed
}
