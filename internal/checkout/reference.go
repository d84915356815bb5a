package checkout

import (
	"fmt"
	"math/rand"
	"strings"
)

// orderReference composes the human-readable order number:
// <prefix>-<DDMMYYYY>-<4 random digits>. Generated once per session
// creation and never reused. The suffix is not cryptographically unique;
// a same-day collision is a tolerated rare event because the provider's
// session ID stays the true unique key.
func (s *Service) orderReference() string {
	now := s.now()
	return fmt.Sprintf("%s-%s-%s", s.checkout.OrderPrefix, now.Format("02012006"), s.randDigits(4))
}

// voucherReference keeps the legacy gift-voucher format, with the date in
// MMDDYYYY order. Printed vouchers in circulation carry it, so it stays.
func (s *Service) voucherReference() string {
	now := s.now()
	return fmt.Sprintf("%s-%s-%s", s.checkout.VoucherPrefix, now.Format("01022006"), s.randDigits(4))
}

func randomDigits(width int) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}
