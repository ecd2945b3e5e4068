package protocol

import "github.com/bnema/cascade/internal/logger"

// Client is one connection to the display
type Client struct {
	id      ClientID
	display *Display
	objects map[ObjectID]Handle
	sink    ErrorSink
	gone    bool
	errors  int
}

// ID returns the client id
func (c *Client) ID() ClientID { return c.id }

// Connected reports whether the client has not been disconnected
func (c *Client) Connected() bool { return !c.gone }

// ErrorCount returns how many protocol errors were posted to the client
func (c *Client) ErrorCount() int { return c.errors }

// Object resolves one of the client's object ids
func (c *Client) Object(id ObjectID) (*Resource, bool) {
	h, ok := c.objects[id]
	if !ok {
		return nil, false
	}
	return c.display.table.lookup(h)
}

func (c *Client) postError(err *Error) {
	c.errors++
	logger.With("protocol").Debug("protocol error posted", "client", c.id, "code", err.Code, "object", err.ObjectID, "message", err.Message)
	if c.sink != nil {
		c.sink.PostError(err)
	}
}

// Resource is a protocol object bound by one client
type Resource struct {
	handle  Handle
	id      ObjectID
	client  *Client
	iface   *Interface
	version uint32
	handler Handler
	display *Display
}

// Handle returns the table handle of the resource
func (r *Resource) Handle() Handle { return r.handle }

// ID returns the client-side object id
func (r *Resource) ID() ObjectID { return r.id }

// Client returns the owning client
func (r *Resource) Client() *Client { return r.client }

// Interface returns the resource's interface
func (r *Resource) Interface() *Interface { return r.iface }

// Version returns the negotiated version
func (r *Resource) Version() uint32 { return r.version }

// Handler returns the attached implementation, nil once destroyed
func (r *Resource) Handler() Handler { return r.handler }

// SetHandler attaches the implementation state
func (r *Resource) SetHandler(h Handler) { r.handler = h }

// Destroy tears the resource down through the display's single teardown path
func (r *Resource) Destroy() { r.display.destroyResource(r) }

// PostError sends a protocol error about this resource to its client
func (r *Resource) PostError(code ErrorCode, message string) {
	r.client.postError(&Error{Code: code, ObjectID: r.id, Interface: r.iface.Name, Message: message})
}
