package dev

import (
	"time"
)

type MessageType string

const (
	MessageTypeRebuilt MessageType = "rebuilt"
	MessageTypeError   MessageType = "error"
)

type Message struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error,omitempty"`
	At    time.Time   `json:"at"`
}

// Client represents a single websocket connection
type Client struct {
	id     string
	notify chan Message
}

func newClient(id string) *Client {
	return &Client{id: id, notify: make(chan Message, 8)}
}

// ClientManager fans rebuild notifications out to every connected browser.
type ClientManager struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	stopped    chan struct{}
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// start runs the manager loop until stop is called.
func (manager *ClientManager) start() {
	defer close(manager.stopped)
	for {
		select {
		case client := <-manager.register:
			manager.clients[client] = true
		case client := <-manager.unregister:
			if _, ok := manager.clients[client]; ok {
				delete(manager.clients, client)
				close(client.notify)
			}
		case msg := <-manager.broadcast:
			for client := range manager.clients {
				select {
				case client.notify <- msg:
				default:
					// a browser this far behind only needs the next reload
				}
			}
		case <-manager.done:
			for client := range manager.clients {
				delete(manager.clients, client)
				close(client.notify)
			}
			return
		}
	}
}

// stop ends the loop and closes every client channel. It blocks until the
// loop has exited.
func (manager *ClientManager) stop() {
	close(manager.done)
	<-manager.stopped
}

func (manager *ClientManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *ClientManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

func (manager *ClientManager) Broadcast(msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	select {
	case manager.broadcast <- msg:
	case <-manager.done:
	}
}
