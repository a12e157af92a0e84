package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/merume/repository"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	// Bu süre aşılırsa bağlantı kapatılır (ağ sorunu olabilir).
	writeWait = 10 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// Inbound trafik sadece küçük komutlardır (scroll_top vb.).
	maxMessageSize = 4096

	// inboundBufferSize: Reader goroutine'in parse ettiği komutların buffer'ı.
	inboundBufferSize = 16

	// feedBufferSize: Feed bildirimlerinin bağlantı döngüsüne taşındığı
	// channel'ın buffer boyutu. Buffer dolarsa bildirimler DÜŞÜRÜLMEZ —
	// pumpFeed bloklar ve backpressure feed'e yansır; döngü yetişemiyorsa
	// zaten snapshot'a coalesce eder.
	feedBufferSize = 64
)

// ConnState, bağlantının yaşam döngüsündeki durumu.
//
// Geçişler tek yönlüdür: Connecting → Streaming → Draining → Closed.
// Draining, "artık push yok, kaynaklar kapatılıyor" demektir — feed handle
// ve reader goroutine bu aşamada sonlandırılır.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateStreaming
	StateDraining
	StateClosed
)

// LiveConnection, tek bir canlı WebSocket bağlantısını temsil eder.
//
// Tek yazar (single-writer) disiplini: conn'a yazan TEK goroutine,
// bağlantının ana döngüsüdür (handler'daki select loop). Reader goroutine
// sadece OKUR ve parse ettiği komutları inbound channel'ına iletir.
// Bu yüzden yazma tarafında mutex'e gerek kalmaz; state alanını
// iki goroutine okuduğu için sadece onu mutex korur.
type LiveConnection struct {
	// id, log satırlarını tek bağlantıya bağlamak için. Kalıcı değildir.
	id     string
	conn   *websocket.Conn
	userID string

	// inbound, reader goroutine'in parse ettiği client komutları.
	inbound chan Command

	// closed, reader goroutine bağlantı kopuşunu gördüğünde kapanır.
	// Ana döngü select ile bunu dinler — feed beklerken bile kopuşu görür.
	closed chan struct{}

	mu    sync.Mutex
	state ConnState
}

// NewLiveConnection, upgrade edilmiş bir conn üzerinden bağlantı oluşturur
// ve reader goroutine'ini başlatır.
func NewLiveConnection(conn *websocket.Conn, userID string) *LiveConnection {
	c := &LiveConnection{
		id:      uuid.NewString(),
		conn:    conn,
		userID:  userID,
		inbound: make(chan Command, inboundBufferSize),
		closed:  make(chan struct{}),
		state:   StateConnecting,
	}

	conn.SetReadLimit(maxMessageSize)
	go c.readLoop()

	return c
}

// readLoop, client'dan gelen mesajları okur ve komut olarak iletir.
//
// Bağlantı kopunca (veya okuma hatasında) closed channel'ını kapatır —
// bu, feed beklemesinde bloklanmış ana döngünün uyanma sinyalidir.
func (c *LiveConnection) readLoop() {
	defer close(c.closed)

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close on conn %s (user %s): %v", c.id, c.userID, err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(rawMessage, &cmd); err != nil {
			log.Printf("[ws] invalid command on conn %s (user %s): %v", c.id, c.userID, err)
			continue
		}

		select {
		case c.inbound <- cmd:
		case <-c.closed:
			return
		default:
			// Komut buffer'ı dolu — client komut spam'liyor, en eskisi
			// yerine yenisi düşürülür. Komutlar idempotent sinyallerdir.
			log.Printf("[ws] inbound buffer full on conn %s (user %s), dropping command", c.id, c.userID)
		}
	}
}

// Push, frame'i bağlantıya yazar. SADECE ana döngüden çağrılmalıdır.
func (c *LiveConnection) Push(frame Frame) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(frame)
}

// Inbound, client komutlarının okunacağı channel'ı döner.
func (c *LiveConnection) Inbound() <-chan Command { return c.inbound }

// Closed, bağlantı kopuşunda kapanan channel'ı döner.
func (c *LiveConnection) Closed() <-chan struct{} { return c.closed }

// State, bağlantının mevcut durumunu döner.
func (c *LiveConnection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState, durum geçişini uygular. Geriye doğru geçiş yapılmaz.
func (c *LiveConnection) SetState(s ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s > c.state {
		c.state = s
	}
}

// Close, bağlantıyı Draining → Closed sırasıyla kapatır.
// Birden fazla kez çağrılması güvenlidir.
func (c *LiveConnection) Close() {
	c.SetState(StateDraining)
	c.conn.Close()
	c.SetState(StateClosed)
}

// pumpFeed, feed bildirimlerini bir channel'a taşır.
//
// Feed'in Next çağrısı bloklar — ana döngü select'te hem feed hem
// disconnect dinleyebilsin diye bildirimler ayrı bir goroutine'de çekilip
// channel'a yazılır. Feed kapanınca veya hata verince channel kapanır;
// hata errCh üzerinden (en fazla bir kez) raporlanır.
func pumpFeed(ctx context.Context, feed repository.ChangeFeed) (<-chan *repository.ChangeNotification, <-chan error) {
	notifications := make(chan *repository.ChangeNotification, feedBufferSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(notifications)
		for {
			n, err := feed.Next(ctx)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case notifications <- n:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return notifications, errCh
}
