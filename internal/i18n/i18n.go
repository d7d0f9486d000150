package i18n

import "sort"

// Supported locales
const (
	English    = "en"
	Indonesian = "id"
	Default    = English
)

var table = map[string]map[string]string{
	English: {
		"nav.dashboard":              "Dashboard",
		"nav.locations":              "Locations",
		"nav.properties":             "Properties",
		"nav.bookings":               "Bookings",
		"nav.inquiries":              "Inquiries",
		"nav.tickets":                "Tickets",
		"nav.live_chat":              "Live Chat",
		"nav.seo":                    "SEO",
		"nav.error_logs":             "Error Logs",
		"nav.settings":               "Settings",
		"action.save":                "Save",
		"action.cancel":              "Cancel",
		"action.delete":              "Delete",
		"action.edit":                "Edit",
		"action.add":                 "Add",
		"action.confirm_delete":      "Are you sure you want to delete this record? This cannot be undone.",
		"action.sync_locations":      "Sync Indonesian locations",
		"action.sync_queue":          "Sync queued operations",
		"action.standardize":         "Standardize",
		"status.loading":             "Loading...",
		"status.saving":              "Saving...",
		"status.saved":               "Saved successfully",
		"status.deleted":             "Deleted successfully",
		"status.offline":             "You are offline. Changes will be queued.",
		"error.generic":              "Something went wrong. Please try again.",
		"error.validation":           "Please correct the highlighted fields.",
		"error.not_found":            "Record not found.",
		"error.rate_limited":         "Too many requests. Please wait a moment.",
		"provinces.duplicates":       "Duplicate provinces",
		"provinces.missing":          "Missing provinces",
		"provinces.found":            "Provinces found",
		"provinces.standardized":     "Province names standardized",
		"seo.score":                  "SEO score",
		"seo.suggestions":            "Suggestions",
		"booking.status.pending":     "Pending",
		"booking.status.confirmed":   "Confirmed",
		"booking.status.cancelled":   "Cancelled",
		"booking.status.completed":   "Completed",
		"payment.status.paid":        "Paid",
		"payment.status.failed":      "Failed",
		"payment.status.refunded":    "Refunded",
		"ticket.status.open":         "Open",
		"ticket.status.in_progress":  "In progress",
		"ticket.status.resolved":     "Resolved",
		"ticket.status.closed":       "Closed",
		"chat.waiting":               "Waiting",
		"chat.active":                "Active",
		"chat.closed":                "Closed",
		"chat.type_message":          "Type a message...",
	},
	Indonesian: {
		"nav.dashboard":              "Dasbor",
		"nav.locations":              "Lokasi",
		"nav.properties":             "Properti",
		"nav.bookings":               "Pemesanan",
		"nav.inquiries":              "Pertanyaan",
		"nav.tickets":                "Tiket",
		"nav.live_chat":              "Obrolan Langsung",
		"nav.seo":                    "SEO",
		"nav.error_logs":             "Log Kesalahan",
		"nav.settings":               "Pengaturan",
		"action.save":                "Simpan",
		"action.cancel":              "Batal",
		"action.delete":              "Hapus",
		"action.edit":                "Ubah",
		"action.add":                 "Tambah",
		"action.confirm_delete":      "Apakah Anda yakin ingin menghapus data ini? Tindakan ini tidak dapat dibatalkan.",
		"action.sync_locations":      "Sinkronkan lokasi Indonesia",
		"action.sync_queue":          "Sinkronkan operasi tertunda",
		"action.standardize":         "Standarkan",
		"status.loading":             "Memuat...",
		"status.saving":              "Menyimpan...",
		"status.saved":               "Berhasil disimpan",
		"status.deleted":             "Berhasil dihapus",
		"status.offline":             "Anda sedang offline. Perubahan akan diantrekan.",
		"error.generic":              "Terjadi kesalahan. Silakan coba lagi.",
		"error.validation":           "Silakan perbaiki kolom yang ditandai.",
		"error.not_found":            "Data tidak ditemukan.",
		"error.rate_limited":         "Terlalu banyak permintaan. Mohon tunggu sebentar.",
		"provinces.duplicates":       "Provinsi duplikat",
		"provinces.missing":          "Provinsi yang belum ada",
		"provinces.found":            "Provinsi ditemukan",
		"provinces.standardized":     "Nama provinsi telah distandarkan",
		"seo.score":                  "Skor SEO",
		"seo.suggestions":            "Saran",
		"booking.status.pending":     "Menunggu",
		"booking.status.confirmed":   "Dikonfirmasi",
		"booking.status.cancelled":   "Dibatalkan",
		"booking.status.completed":   "Selesai",
		"payment.status.paid":        "Lunas",
		"payment.status.failed":      "Gagal",
		"payment.status.refunded":    "Dikembalikan",
		"ticket.status.open":         "Terbuka",
		"ticket.status.in_progress":  "Diproses",
		"ticket.status.resolved":     "Terselesaikan",
		"ticket.status.closed":       "Ditutup",
		"chat.waiting":               "Menunggu",
		"chat.active":                "Aktif",
		"chat.type_message":          "Ketik pesan...",
	},
}

// Translate returns the text for key in locale, falling back to English, then to the key itself
func Translate(locale, key string) string {
	if s, ok := table[locale][key]; ok {
		return s
	}
	if s, ok := table[Default][key]; ok {
		return s
	}
	return key
}

// Supported reports whether locale has its own table
func Supported(locale string) bool {
	_, ok := table[locale]
	return ok
}

// Locales lists the supported locales
func Locales() []string {
	out := make([]string, 0, len(table))
	for l := range table {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Table returns every key for locale with English fallbacks filled in
func Table(locale string) map[string]string {
	out := make(map[string]string, len(table[Default]))
	for k := range table[Default] {
		out[k] = Translate(locale, k)
	}
	return out
}
