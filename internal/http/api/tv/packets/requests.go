package packets

// REQUESTS FOR /api/tv/*

type PairRequest struct {
	PairingCode string `json:"code" binding:"required"`
}
