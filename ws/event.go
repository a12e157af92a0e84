// Package ws, WebSocket bağlantı yönetimi ve canlı içerik senkronizasyonunu sağlar.
//
// Mimari:
// - LiveConnection: Tek bir WebSocket bağlantısının yaşam döngüsü
// - Handler: Endpoint başına bağlantı kuran HTTP handler'ları
// - Frame: Server → Client mesaj formatı (HTTP envelope'u ile aynı)
//
// Event akışı:
// 1. Client bağlanır → token doğrulanır → snapshot push edilir
// 2. İlgili koleksiyonda change feed açılır
// 3. Her bildirimde görünürlük YENİDEN kontrol edilir, veri storage'dan
//    YENİDEN okunur — feed "bir şey değişti" sinyalidir, veri kaynağı değil
// 4. Sonuç client'a tek yazar (single-writer) döngüsünden push edilir
package ws

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/repository"
)

// Frame, WebSocket üzerinden client'a gönderilen mesajın envelope'u.
//
// HTTP API'nin {success, data, error_message} formatıyla birebir aynıdır —
// client her iki kanalda da tek bir parse yolu kullanır.
type Frame struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error_message,omitempty"`
}

// dataFrame, başarılı bir frame üretir.
func dataFrame(data any) Frame {
	return Frame{Success: true, Data: data}
}

// errorFrame, bağlantı üzerinden bildirilen hata frame'i üretir.
func errorFrame(message string) Frame {
	return Frame{Success: false, Error: message}
}

// PostChangeFrame, bir post değişikliğinin client'a push edilen payload'ı.
//
// insert/update'te Post dolu, PostID boş gelir. delete'te ise SADECE PostID
// dolu gelir — tombstone. Silinmiş içeriğin gövdesi bağlantıya bir daha asla
// yazılmaz; client elindeki kopyayı id ile düşürür.
type PostChangeFrame struct {
	OperationType repository.ChangeOp `json:"operation_type"`
	Post          *models.Post        `json:"post,omitempty"`
	PostID        *primitive.ObjectID `json:"post_id,omitempty"`
}

// Command, client'dan gelen inbound mesaj.
type Command struct {
	Op string `json:"op"`
}

// Client → Server operasyonları
const (
	// OpScrollTop: client görünümün tepesine ulaştı, bir sonraki (daha
	// eski) post sayfasını istiyor.
	OpScrollTop = "scroll_top"
)
