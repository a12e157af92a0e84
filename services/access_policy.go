// Package services, iş mantığı katmanını barındırır.
// Service'ler repository interface'lerine bağımlıdır — testlerde fake
// repository'lerle çalışırlar.
package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

// Bu dosya erişim politikasının saf predicate'lerini içerir.
//
// Predicate'ler I/O yapmaz — kararlarını önceden fetch edilmiş dökümanlar
// üzerinden verir. Sonuçları CACHE'LENMEZ: bir kullanıcının erişimi iki
// bildirim arasında değişebilir (ör. unsubscribe), bu yüzden live
// connection'lar her change notification'da yeniden değerlendirir.

// CanViewChannel, kimliğin kanalı ŞU AN görüp göremeyeceğini döner.
//
// Görebilir: kanal Public ise, kimlik kanal sahibiyse, contributor
// listesindeyse veya aktif bir aboneliği (subscribed_at dolu link) varsa.
// link nil olabilir — "bu çift için link yok" demektir.
func CanViewChannel(userID primitive.ObjectID, channel *models.Channel, link *models.UserChannel) bool {
	if channel == nil {
		return false
	}
	if channel.Visibility == models.VisibilityPublic {
		return true
	}
	if channel.Author.ID == userID {
		return true
	}
	for _, contributor := range channel.Contributors {
		if contributor == userID {
			return true
		}
	}
	return link.IsSubscriber()
}

// CanMutatePost, kimliğin postu değiştirip değiştiremeyeceğini döner.
// Sadece postun yazarı — contributor'lık veya kanal sahipliği yetmez.
func CanMutatePost(userID primitive.ObjectID, post *models.Post) bool {
	return post != nil && post.Author.ID == userID
}

// CanMutateChannel, kimliğin kanal metadata'sını değiştirip
// değiştiremeyeceğini döner. Sadece kanal sahibi — contributor'lar
// post yazabilir ama kanalı değiştiremez.
func CanMutateChannel(userID primitive.ObjectID, channel *models.Channel) bool {
	return channel != nil && channel.Author.ID == userID
}
