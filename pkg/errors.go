// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir. errors.New() ile sabit error
// değişkenleri tanımlarız; karşılaştırma string yerine errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
// Service katmanı bunları döner, handler yakalar.
var (
	ErrUnauthorized  = errors.New("unauthorized")   // Kimlik yok veya geçersiz
	ErrForbidden     = errors.New("forbidden")      // Kimlik geçerli, erişim yetersiz
	ErrNotFound      = errors.New("not found")      // Kaynak id çözümlenemedi
	ErrConflict      = errors.New("conflict")       // Duplicate abonelik, edit hakkı tükendi vb.
	ErrUnprocessable = errors.New("unprocessable")  // Payload validation'dan geçemedi
	ErrInternal      = errors.New("internal error") // Storage / feed hatası
)

// ErrNoPreferences, kullanıcının kayıtlı tercihi olmadığını belirtir.
//
// "Hiçbir kanal eşleşmedi" ile "eşleşecek tercih yok" farklı durumlardır —
// recommendation çağıranı bu ikisini ayırt edebilmeli. Bu yüzden boş liste
// yerine ayrı bir sentinel dönüyoruz. Handler katmanı 404'e map'ler.
var ErrNoPreferences = errors.New("user does not have any preferences, try to add preferences")
