// Package mock provides an in-memory driver session for tests.
//
// The page is a tree of Nodes. A node answers to a criterion when the
// criterion's string form ("css=tr", "xpath=./td[2]") is listed in its
// Matches. Faults can be queued per node and per operation to script flaky
// behaviour.
package mock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
)

// Operation names used for fault queues and call counters.
const (
	OpFind         = "find"
	OpClick        = "click"
	OpDispatch     = "dispatch_click"
	OpDoubleClick  = "double_click"
	OpClickAndHold = "click_and_hold"
	OpHover        = "hover"
	OpSendKeys     = "send_keys"
	OpPressKey     = "press_key"
	OpClear        = "clear"
	OpScroll       = "scroll"
	OpText         = "text"
	OpAttribute    = "attribute"
	OpSelected     = "selected_option"
	OpState        = "state"
)

func ErrStale() error {
	return apperr.WrapErrorWithReason("mock", apperr.CodeStale, "stale element reference")
}

func ErrIntercepted() error {
	return apperr.WrapErrorWithReason("mock", apperr.CodeClickIntercepted, "element click intercepted")
}

func ErrNotInteractable() error {
	return apperr.WrapErrorWithReason("mock", apperr.CodeNotInteractable, "element not interactable")
}

func ErrOutOfViewport() error {
	return apperr.WrapErrorWithReason("mock", apperr.CodeOutOfViewport, "move target out of bounds")
}

func ErrSessionClosed() error {
	return apperr.WrapErrorWithReason("mock", apperr.CodeSessionNotReady, "session closed")
}

type Node struct {
	Name     string
	Matches  []string
	Content  string
	Attrs    map[string]string
	Value    string
	Hidden   bool
	Disabled bool
	Selected bool
	Stale    bool
	Children []*Node

	driver *Driver
	faults map[string][]error
	calls  map[string]int
}

// El builds a node answering to the given criteria strings.
func El(name string, matches ...string) *Node {
	return &Node{Name: name, Matches: matches}
}

func (n *Node) WithText(text string) *Node {
	n.Content = text

	return n
}

func (n *Node) WithAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}

	n.Attrs[name] = value

	return n
}

func (n *Node) With(children ...*Node) *Node {
	n.Children = append(n.Children, children...)

	return n
}

// Fail queues errs to be returned, in order, by the next calls of op.
func (n *Node) Fail(op string, errs ...error) *Node {
	if n.faults == nil {
		n.faults = make(map[string][]error)
	}

	n.faults[op] = append(n.faults[op], errs...)

	return n
}

// Calls returns how many times op was invoked on this node, failed or not.
func (n *Node) Calls(op string) int {
	return n.calls[op]
}

func (n *Node) String() string {
	return n.Name
}

func (n *Node) enter(op string) error {
	if n.calls == nil {
		n.calls = make(map[string]int)
	}

	n.calls[op]++

	if n.driver != nil {
		n.driver.log = append(n.driver.log, n.Name+":"+op)

		if n.driver.closed {
			return ErrSessionClosed()
		}
	}

	if q := n.faults[op]; len(q) > 0 {
		n.faults[op] = q[1:]

		return q[0]
	}

	if n.Stale {
		return ErrStale()
	}

	return nil
}

func (n *Node) interactable(op string) error {
	if err := n.enter(op); err != nil {
		return err
	}

	if n.Hidden || n.Disabled {
		return apperr.WrapErrorWithReason("mock", apperr.CodeNotInteractable, n.Name+" is not interactable")
	}

	return nil
}

func (n *Node) matches(c entity.Criterion) bool {
	return slices.Contains(n.Matches, c.String())
}

// descendants returns matching nodes in document order, excluding n itself.
func (n *Node) descendants(c entity.Criterion) []*Node {
	var out []*Node

	for _, child := range n.Children {
		if child.matches(c) {
			out = append(out, child)
		}

		out = append(out, child.descendants(c)...)
	}

	return out
}

func (n *Node) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	if err := n.enter(OpFind); err != nil {
		return nil, err
	}

	found := n.descendants(c)
	if len(found) == 0 {
		return nil, apperr.NotFoundError("FindElement", fmt.Errorf("no element for %s under %s", c, n.Name))
	}

	return n.driver.attach(found[0]), nil
}

func (n *Node) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	if err := n.enter(OpFind); err != nil {
		return nil, err
	}

	return n.driver.attachAll(n.descendants(c)), nil
}

func (n *Node) Click(ctx context.Context) error {
	if err := n.interactable(OpClick); err != nil {
		return err
	}

	n.driver.clicked = append(n.driver.clicked, n)

	return nil
}

func (n *Node) DispatchClick(ctx context.Context) error {
	if err := n.enter(OpDispatch); err != nil {
		return err
	}

	n.driver.clicked = append(n.driver.clicked, n)

	return nil
}

func (n *Node) DoubleClick(ctx context.Context) error {
	return n.interactable(OpDoubleClick)
}

func (n *Node) ClickAndHold(ctx context.Context) error {
	return n.interactable(OpClickAndHold)
}

func (n *Node) Hover(ctx context.Context) error {
	return n.interactable(OpHover)
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	if err := n.interactable(OpSendKeys); err != nil {
		return err
	}

	n.Value += text

	return nil
}

func (n *Node) PressKey(ctx context.Context, key entity.Key) error {
	if err := n.interactable(OpPressKey); err != nil {
		return err
	}

	n.driver.keys = append(n.driver.keys, key)

	return nil
}

func (n *Node) Clear(ctx context.Context) error {
	if err := n.interactable(OpClear); err != nil {
		return err
	}

	n.Value = ""

	return nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	return n.enter(OpScroll)
}

func (n *Node) Text(ctx context.Context) (string, error) {
	if err := n.enter(OpText); err != nil {
		return "", err
	}

	return n.Content, nil
}

func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := n.enter(OpAttribute); err != nil {
		return "", false, err
	}

	if name == "value" && n.Value != "" {
		return n.Value, true, nil
	}

	v, ok := n.Attrs[name]

	return v, ok, nil
}

func (n *Node) SelectedOption(ctx context.Context) (string, error) {
	if err := n.enter(OpSelected); err != nil {
		return "", err
	}

	return n.Value, nil
}

func (n *Node) IsDisplayed(ctx context.Context) (bool, error) {
	if err := n.enter(OpState); err != nil {
		return false, err
	}

	return !n.Hidden, nil
}

func (n *Node) IsEnabled(ctx context.Context) (bool, error) {
	if err := n.enter(OpState); err != nil {
		return false, err
	}

	return !n.Disabled, nil
}

func (n *Node) IsSelected(ctx context.Context) (bool, error) {
	if err := n.enter(OpState); err != nil {
		return false, err
	}

	return n.Selected, nil
}

// Driver is an in-memory ports.Driver.
type Driver struct {
	Root      *Node
	PageURL   string
	PageTitle string

	// BeforeFind runs before every page level lookup with the 1-based call number.
	BeforeFind func(call int, c entity.Criterion)

	alert    *string
	prompt   string
	windows  []string
	current  string
	cookies  bool
	implicit time.Duration
	closed   bool

	finds   map[string]int
	clicked []*Node
	keys    []entity.Key
	log     []string
}

func New(children ...*Node) *Driver {
	d := &Driver{
		Root:    El("document").With(children...),
		windows: []string{"main"},
		current: "main",
		cookies: true,
		finds:   make(map[string]int),
	}
	d.Root.driver = d

	return d
}

func (d *Driver) attach(n *Node) *Node {
	n.driver = d

	return n
}

func (d *Driver) attachAll(nodes []*Node) []ports.Element {
	out := make([]ports.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.attach(n))
	}

	return out
}

// Finds returns the number of page level lookups made for c.
func (d *Driver) Finds(c entity.Criterion) int {
	return d.finds[c.String()]
}

// Clicked returns the nodes clicked so far, in order.
func (d *Driver) Clicked() []*Node {
	return d.clicked
}

func (d *Driver) Keys() []entity.Key {
	return d.keys
}

// Log returns every node operation as "name:op", in call order.
func (d *Driver) Log() []string {
	return d.log
}

// OpenAlert simulates a native dialog.
func (d *Driver) OpenAlert(text string) {
	d.alert = &text
}

func (d *Driver) Prompt() string {
	return d.prompt
}

func (d *Driver) AddWindow(handle string) {
	d.windows = append(d.windows, handle)
}

func (d *Driver) HasCookies() bool {
	return d.cookies
}

func (d *Driver) ImplicitWait() time.Duration {
	return d.implicit
}

func (d *Driver) Closed() bool {
	return d.closed
}

func (d *Driver) check() error {
	if d.closed {
		return ErrSessionClosed()
	}

	return nil
}

func (d *Driver) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	if err := d.beforeFind(c); err != nil {
		return nil, err
	}

	return d.Root.FindElement(ctx, c)
}

func (d *Driver) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	if err := d.beforeFind(c); err != nil {
		return nil, err
	}

	return d.Root.FindElements(ctx, c)
}

func (d *Driver) beforeFind(c entity.Criterion) error {
	if err := d.check(); err != nil {
		return err
	}

	d.finds[c.String()]++

	if d.BeforeFind != nil {
		d.BeforeFind(d.finds[c.String()], c)
	}

	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.check(); err != nil {
		return err
	}

	d.PageURL = url

	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	return d.PageURL, d.check()
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	return d.PageTitle, d.check()
}

func (d *Driver) PressKey(ctx context.Context, key entity.Key) error {
	if err := d.check(); err != nil {
		return err
	}

	d.keys = append(d.keys, key)

	return nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}

func (d *Driver) AlertText(ctx context.Context) (string, error) {
	if err := d.check(); err != nil {
		return "", err
	}

	if d.alert == nil {
		return "", apperr.WrapErrorWithReason("AlertText", apperr.CodeNoAlert, "no alert open")
	}

	return *d.alert, nil
}

func (d *Driver) AcceptAlert(ctx context.Context) error {
	if _, err := d.AlertText(ctx); err != nil {
		return err
	}

	d.alert = nil

	return nil
}

func (d *Driver) DismissAlert(ctx context.Context) error {
	if _, err := d.AlertText(ctx); err != nil {
		return err
	}

	d.alert = nil
	d.prompt = ""

	return nil
}

func (d *Driver) SendAlertText(ctx context.Context, text string) error {
	if _, err := d.AlertText(ctx); err != nil {
		return err
	}

	d.prompt = text

	return nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	return slices.Clone(d.windows), d.check()
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	return d.current, d.check()
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	if err := d.check(); err != nil {
		return err
	}

	if !slices.Contains(d.windows, handle) {
		return apperr.NotFoundError("SwitchWindow", errors.New("no window "+handle))
	}

	d.current = handle

	return nil
}

func (d *Driver) DeleteAllCookies(ctx context.Context) error {
	if err := d.check(); err != nil {
		return err
	}

	d.cookies = false

	return nil
}

func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	if err := d.check(); err != nil {
		return err
	}

	d.implicit = timeout

	return nil
}

func (d *Driver) Close(ctx context.Context) error {
	d.closed = true

	return nil
}

// Launcher hands out a prepared mock session.
type Launcher struct {
	Driver *Driver
	Err    error
}

func (l *Launcher) Open(ctx context.Context) (ports.Driver, error) {
	if l.Err != nil {
		return nil, l.Err
	}

	return l.Driver, nil
}

func (l *Launcher) Name() string {
	return "mock"
}
