// Package protocol implements the server-side object model of a Wayland-style
// display: globals advertised to every client, resources bound per client,
// request dispatch and resource teardown.
//
// A Display is not safe for concurrent use. It is driven from the session's
// run loop, which also delivers compositor events, so protocol callbacks and
// policy callbacks never interleave.
package protocol

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/bnema/cascade/internal/logger"
	"github.com/charmbracelet/log"
)

// ObjectID is a client-chosen protocol object id
type ObjectID uint32

// ClientID identifies a connected client for the lifetime of the display
type ClientID uint32

// NewID is the argument type for requests that create a child object
type NewID ObjectID

// Message describes one request of an interface
type Message struct {
	Name string
	// NewInterface is set for requests whose first argument is a new_id of
	// that interface. The runtime creates the child before the handler runs.
	NewInterface *Interface
	// Destructor requests destroy their resource once the handler returns.
	Destructor bool
}

// Interface describes a protocol interface and the highest version the server implements
type Interface struct {
	Name     string
	Version  uint32
	Requests []Message
}

// Request is one incoming request, routed to the target resource's handler
type Request struct {
	Resource    *Resource
	Opcode      uint16
	Message     Message
	NewResource *Resource
	Args        []any
}

// Handler is the implementation state attached to a resource
type Handler interface {
	HandleRequest(req *Request) error
}

// DestroyHandler is implemented by handlers that release state on teardown.
// ResourceDestroyed runs exactly once per resource, whether the client
// destroyed it explicitly or disconnected.
type DestroyHandler interface {
	ResourceDestroyed(r *Resource)
}

// BindFunc attaches an implementation to a freshly bound global resource
type BindFunc func(r *Resource) error

// Option configures a Display
type Option func(*Display)

// WithResourceLimit caps the number of live resources. Creations beyond the
// cap fail with a no_memory error to the requesting client.
func WithResourceLimit(n int) Option {
	return func(d *Display) {
		d.table = newHandleTable(n)
	}
}

// Display owns globals, clients and the resource table
type Display struct {
	globals    map[uint32]*Global
	nextGlobal uint32
	clients    map[ClientID]*Client
	nextClient ClientID
	table      *handleTable
	log        *log.Logger
}

// NewDisplay creates an empty display
func NewDisplay(opts ...Option) *Display {
	d := &Display{
		globals:    make(map[uint32]*Global),
		nextGlobal: 1,
		clients:    make(map[ClientID]*Client),
		nextClient: 1,
		table:      newHandleTable(0),
		log:        logger.With("protocol"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Global is a process-wide advertisement of an interface
type Global struct {
	name    uint32
	iface   *Interface
	version uint32
	bind    BindFunc
}

// Name returns the registry name of the global
func (g *Global) Name() uint32 { return g.name }

// Interface returns the advertised interface
func (g *Global) Interface() *Interface { return g.iface }

// Version returns the advertised version
func (g *Global) Version() uint32 { return g.version }

// CreateGlobal advertises iface at the given version
func (d *Display) CreateGlobal(iface *Interface, version uint32, bind BindFunc) (*Global, error) {
	if iface == nil || iface.Name == "" {
		return nil, fmt.Errorf("global requires a named interface")
	}
	if version == 0 || version > iface.Version {
		return nil, fmt.Errorf("%s: cannot advertise version %d (implemented %d)", iface.Name, version, iface.Version)
	}
	if bind == nil {
		return nil, fmt.Errorf("%s: bind function is required", iface.Name)
	}

	g := &Global{
		name:    d.nextGlobal,
		iface:   iface,
		version: version,
		bind:    bind,
	}
	d.nextGlobal++
	d.globals[g.name] = g

	d.log.Debug("global advertised", "interface", iface.Name, "version", version, "name", g.name)
	return g, nil
}

// Globals returns the advertised globals ordered by name
func (d *Display) Globals() []*Global {
	out := make([]*Global, 0, len(d.globals))
	for _, g := range d.globals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// FindGlobal looks a global up by interface name
func (d *Display) FindGlobal(interfaceName string) (*Global, bool) {
	for _, g := range d.Globals() {
		if g.iface.Name == interfaceName {
			return g, true
		}
	}
	return nil, false
}

// Connect registers a new client. sink may be nil, in which case protocol
// errors are only logged.
func (d *Display) Connect(sink ErrorSink) *Client {
	c := &Client{
		id:      d.nextClient,
		display: d,
		objects: make(map[ObjectID]Handle),
		sink:    sink,
	}
	d.nextClient++
	d.clients[c.id] = c

	d.log.Debug("client connected", "client", c.id)
	return c
}

// Client returns a connected client by id
func (d *Display) Client(id ClientID) (*Client, bool) {
	c, ok := d.clients[id]
	return c, ok
}

// ClientCount returns the number of connected clients
func (d *Display) ClientCount() int { return len(d.clients) }

// ResourceCount returns the number of live resources
func (d *Display) ResourceCount() int { return d.table.len() }

// Lookup resolves a handle. Handles of destroyed resources never resolve.
func (d *Display) Lookup(h Handle) (*Resource, error) {
	r, ok := d.table.lookup(h)
	if !ok {
		return nil, ErrStaleHandle
	}
	return r, nil
}

// Bind creates a resource for global on behalf of client. The resource
// version is the smaller of the requested and advertised versions.
func (d *Display) Bind(c *Client, globalName uint32, requested uint32, id ObjectID) (*Resource, error) {
	if c.gone {
		return nil, ErrClientGone
	}
	g, ok := d.globals[globalName]
	if !ok {
		err := &Error{Code: ErrorInvalidObject, ObjectID: id, Message: fmt.Sprintf("no global named %d", globalName)}
		c.postError(err)
		return nil, fmt.Errorf("bind %d: %w", globalName, ErrUnknownGlobal)
	}

	version := requested
	if version > g.version {
		version = g.version
	}
	if version == 0 {
		version = 1
	}

	r, err := d.createResource(c, g.iface, version, id)
	if err != nil {
		return nil, err
	}

	if err := d.invoke(c, r, fmt.Sprintf("%s::bind()", g.iface.Name), func() error { return g.bind(r) }); err != nil {
		d.destroyResource(r)
		return nil, err
	}
	if r.handler == nil {
		d.destroyResource(r)
		perr := &Error{Code: ErrorImplementation, ObjectID: id, Interface: g.iface.Name, Message: "bind attached no implementation"}
		c.postError(perr)
		return nil, perr
	}

	d.log.Debug("global bound", "client", c.id, "interface", g.iface.Name, "version", version, "id", id)
	return r, nil
}

// Dispatch routes a request from client to the object it names. Handler
// errors and panics are posted to that client and never returned to the
// caller's loop as a panic.
func (d *Display) Dispatch(c *Client, id ObjectID, opcode uint16, args ...any) error {
	if c.gone {
		return ErrClientGone
	}

	h, ok := c.objects[id]
	if !ok {
		err := &Error{Code: ErrorInvalidObject, ObjectID: id, Message: "invalid object"}
		c.postError(err)
		return err
	}
	r, ok := d.table.lookup(h)
	if !ok {
		err := &Error{Code: ErrorInvalidObject, ObjectID: id, Message: "object already destroyed"}
		c.postError(err)
		return err
	}

	if int(opcode) >= len(r.iface.Requests) {
		err := &Error{Code: ErrorInvalidMethod, ObjectID: id, Interface: r.iface.Name, Message: fmt.Sprintf("invalid opcode %d", opcode)}
		c.postError(err)
		return err
	}
	msg := r.iface.Requests[opcode]

	if r.handler == nil {
		err := &Error{Code: ErrorImplementation, ObjectID: id, Interface: r.iface.Name, Message: "object has no implementation"}
		c.postError(err)
		return err
	}

	req := &Request{Resource: r, Opcode: opcode, Message: msg, Args: args}

	if msg.NewInterface != nil {
		newID, rest, err := splitNewID(args)
		if err != nil {
			perr := &Error{Code: ErrorInvalidMethod, ObjectID: id, Interface: r.iface.Name, Message: fmt.Sprintf("%s: %v", msg.Name, err)}
			c.postError(perr)
			return perr
		}
		child, err := d.createResource(c, msg.NewInterface, r.version, ObjectID(newID))
		if err != nil {
			return err
		}
		req.NewResource = child
		req.Args = rest
	}

	where := fmt.Sprintf("%s::%s()", r.iface.Name, msg.Name)
	err := d.invoke(c, r, where, func() error { return r.handler.HandleRequest(req) })

	if req.NewResource != nil && req.NewResource.handler == nil {
		// Handler never took ownership of the child
		d.destroyResource(req.NewResource)
	}
	if err != nil {
		return err
	}

	if msg.Destructor {
		d.destroyResource(r)
	}
	return nil
}

// Disconnect tears down every resource the client owns, newest first, and
// forgets the client. Calling it twice is harmless.
func (d *Display) Disconnect(c *Client) {
	if c.gone {
		return
	}

	ids := make([]ObjectID, 0, len(c.objects))
	for id := range c.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	for _, id := range ids {
		if r, ok := d.table.lookup(c.objects[id]); ok {
			d.destroyResource(r)
		}
	}

	c.gone = true
	delete(d.clients, c.id)
	d.log.Debug("client disconnected", "client", c.id, "resources", len(ids))
}

func (d *Display) createResource(c *Client, iface *Interface, version uint32, id ObjectID) (*Resource, error) {
	if _, taken := c.objects[id]; taken || id == 0 {
		err := &Error{Code: ErrorInvalidObject, ObjectID: id, Interface: iface.Name, Message: "object id already in use"}
		c.postError(err)
		return nil, err
	}

	r := &Resource{
		id:      id,
		client:  c,
		iface:   iface,
		version: version,
		display: d,
	}
	h, ok := d.table.insert(r)
	if !ok {
		err := &Error{Code: ErrorNoMemory, ObjectID: id, Interface: iface.Name, Message: "no memory"}
		c.postError(err)
		return nil, err
	}
	r.handle = h
	c.objects[id] = h
	return r, nil
}

// destroyResource is the single teardown path for every resource
func (d *Display) destroyResource(r *Resource) {
	if _, ok := d.table.remove(r.handle); !ok {
		return
	}
	delete(r.client.objects, r.id)

	handler := r.handler
	r.handler = nil
	if dh, ok := handler.(DestroyHandler); ok {
		func() {
			defer func() {
				if p := recover(); p != nil {
					d.log.Error("destroy handler panicked", "interface", r.iface.Name, "id", r.id, "panic", p)
				}
			}()
			dh.ResourceDestroyed(r)
		}()
	}
	d.log.Debug("resource destroyed", "client", r.client.id, "interface", r.iface.Name, "id", r.id)
}

// invoke runs fn and converts a returned error or panic into a protocol
// error posted to c
func (d *Display) invoke(c *Client, r *Resource, where string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Error("request handler panicked", "client", c.id, "request", where, "panic", p, "stack", string(debug.Stack()))
			perr := &Error{Code: ErrorImplementation, ObjectID: r.id, Interface: r.iface.Name, Message: fmt.Sprintf("internal error processing request %s", where)}
			c.postError(perr)
			err = perr
		}
	}()

	if ferr := fn(); ferr != nil {
		perr, ok := ferr.(*Error)
		if !ok {
			perr = &Error{Code: ErrorImplementation, ObjectID: r.id, Interface: r.iface.Name, Message: fmt.Sprintf("%s: %v", where, ferr)}
		}
		d.log.Warn("request failed", "client", c.id, "request", where, "err", ferr)
		c.postError(perr)
		return perr
	}
	return nil
}

func splitNewID(args []any) (NewID, []any, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("missing new_id argument")
	}
	id, ok := args[0].(NewID)
	if !ok {
		return 0, nil, fmt.Errorf("first argument is %T, want new_id", args[0])
	}
	return id, args[1:], nil
}
