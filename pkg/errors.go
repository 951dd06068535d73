// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// errors.New() ile sabit error değişkenleri tanımlarız; karşılaştırma
// string yerine errors.Is(err, pkg.ErrNotFound) ile yapılır —
// typo'ya açık string karşılaştırmasından çok daha güvenlidir.
package pkg

import "errors"

// Domain-level error'lar — hata taksonomisi.
// Service katmanı bunları döner (gerekirse fmt.Errorf("%w: detay") ile
// sararak), handler katmanı HTTP status code'larına map'ler.
//
//	ErrBadRequest    → 400 (validation: sınır dışı count, kısa şifre, ...)
//	ErrUnauthorized  → 401 (eksik/geçersiz/süresi dolmuş/yanlış tipte token,
//	                        yanlış kimlik bilgisi — hangisi olduğu söylenmez)
//	ErrNotFound      → 404 (kayıt yok VEYA başkasına ait — ayrım yapılmaz,
//	                        varlık bilgisi sızdırılmaz)
//	ErrAlreadyExists → 409 (kayıtta duplicate username/email)
//	ErrGateway       → 502 (üretim servisi hatası veya bozuk çıktısı)
//	ErrInternal      → 500 (storage/transaction hatası)
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrGateway       = errors.New("generation failed")
	ErrInternal      = errors.New("internal error")
)
