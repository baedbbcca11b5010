package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"alertrelay/internal/config"
	"alertrelay/internal/httpx"
	"alertrelay/internal/logging"
	"alertrelay/internal/notify"
	"alertrelay/internal/store"
)

const (
	webhookPath = "/webhooks/grafana"
	statusPath  = "/"

	// A connection that stalls mid-request must not hang the accept loop;
	// a timed-out read is treated as end-of-input by the framer.
	readTimeout = time.Second
)

type Server struct {
	config *config.Config
	store  *store.Store
	queue  *notify.Queue
}

func New(cfg *config.Config, st *store.Store, queue *notify.Queue) *Server {
	return &Server{config: cfg, store: st, queue: queue}
}

// Run accepts and handles connections sequentially. A slow client delays
// later ones; the per-read deadline bounds how long. Blocks for the life
// of the listener.
func (s *Server) Run(listener net.Listener) {
	logging.Tracef("Listening for incoming connections")
	for {
		conn, err := listener.Accept()
		if err != nil {
			logging.Warnf("Could not open stream: %v", err)
			continue
		}
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	request, err := httpx.ReadRequest(&deadlineConn{Conn: conn})
	if err != nil {
		s.writeFramerError(conn, err)
		return
	}

	var response httpx.Response
	switch request.Path {
	case webhookPath:
		response = s.handleWebhook(request)
	case statusPath:
		response = s.handleStatus(request)
	default:
		response = httpx.NewResponse("HTTP/1.1 404 Not Found", []string{"Content-Type: text/plain"}, "Not found")
	}
	if err := response.Write(conn); err != nil {
		logging.Warnf("Failed to write response: %v", err)
	}
}

func (s *Server) writeFramerError(conn net.Conn, err error) {
	var response httpx.Response
	if errors.Is(err, httpx.ErrNoContentLength) {
		response = httpx.NewBodylessResponse("HTTP/1.1 411 Length Required", nil)
	} else {
		logging.Errorf("Failed to process request due to %v", err)
		response = httpx.NewResponse("HTTP/1.1 500 Internal Server Error", []string{"Content-Type: text/plain"}, err.Error())
	}
	if werr := response.Write(conn); werr != nil {
		logging.Warnf("Failed to write error response: %v", werr)
	}
}

// deadlineConn pushes the read deadline forward before every read, giving
// the framer its per-read timeout signal.
type deadlineConn struct {
	net.Conn
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func webhookFailure(err error) httpx.Response {
	logging.Errorf("Webhook failed to process request due to %v", err)
	return httpx.NewResponse("HTTP/1.1 500 Internal Server Error", []string{"Content-Type: text/plain"}, err.Error())
}

func fingerprintRow(record store.Record) string {
	name := "Unknown"
	if record.Name != nil {
		name = *record.Name
	}
	priority := "Unknown"
	if record.Priority != nil {
		priority = record.Priority.String()
	}
	lastAlert := record.LastAlerted.Format("02/01/06 15:04")
	firstAlert := "Unknown"
	if record.FirstAlerted != nil {
		firstAlert = record.FirstAlerted.Format("02/01/2006 15:04")
	}
	return fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
		record.Fingerprint, name, priority, record.LastStatus, lastAlert, firstAlert)
}

// handleStatus renders the read-only fingerprint table. Anything but GET
// is bounced back to the page itself.
func (s *Server) handleStatus(request *httpx.Request) httpx.Response {
	if request.Method != "GET" {
		return httpx.NewBodylessResponse("HTTP/1.1 302 Found", []string{"Location: /"})
	}

	s.store.Lock()
	records := s.store.Snapshot()
	s.store.Unlock()

	table := "<table border='1px solid black'>"
	table += "<tr><th>ID</th><th>Name</th><th>Priority</th><th>Status</th><th>Last Alert</th><th>First Alert</th></tr>"
	for _, record := range records {
		table += fingerprintRow(record)
	}
	table += "</table>"
	body := "<html><body>" + table + "</body></html>"
	return httpx.NewResponse("HTTP/1.1 200 OK", []string{"Content-Type: text/html"}, body)
}
