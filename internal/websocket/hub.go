package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

// Envelope 구독자에게 전달되는 메시지
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client 주문 이벤트 구독자
type Client struct {
	Hub  *Hub
	Conn *Conn
	Send chan []byte
}

// Hub 주문 이벤트 구독 관리자
type Hub struct {
	clients map[*Client]bool

	// 클라이언트 등록
	register chan *Client

	// 클라이언트 등록 해제
	unregister chan *Client

	// 메시지 브로드캐스트
	broadcast chan []byte

	// Run 종료 시 닫힘
	done chan struct{}

	mu sync.RWMutex
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		done:       make(chan struct{}),
	}
}

// NewClient 전송 버퍼를 가진 클라이언트 생성
func (h *Hub) NewClient(conn *Conn) *Client {
	return &Client{Hub: h, Conn: conn, Send: make(chan []byte, sendBufferSize)}
}

// Run ctx가 끝날 때까지 등록/해제/브로드캐스트를 처리한다
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket subscriber registered", map[string]interface{}{
				"subscribers": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket subscriber unregistered", map[string]interface{}{
				"subscribers": remaining,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// 전송 버퍼가 가득 찬 구독자는 끊는다
					delete(h.clients, client)
					close(client.Send)
					logger.Warn("Subscriber send buffer full, disconnecting", nil)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish 이벤트를 모든 구독자에게 보낸다. 실패해도 호출자에게 알리지 않는다.
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
}

// Register 클라이언트 등록. Run이 끝난 뒤에는 Send를 닫고 바로 반환한다.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 클라이언트 등록 해제. Run이 끝난 뒤에는 아무것도 하지 않는다.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers 현재 구독자 수
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
