package helpers

// Request/Response DTOs
type CreateAuctionRequest struct {
	OwnerID     string `json:"owner_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	FloorPrice  int64  `json:"floor_price" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Message  string `json:"message"`
}

type AuctionResponse struct {
	AuctionID   string  `json:"auction_id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	FloorPrice  int64   `json:"floor_price"`
	CreatedAt   string  `json:"created_at"`
	CloseAt     string  `json:"close_at"`
	Status      string  `json:"status"`
	WinnerID    *string `json:"winner_id,omitempty"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type AuctionStateResponse struct {
	Auction AuctionResponse `json:"auction"`
	Bids    []BidResponse   `json:"bids"`
}

type BalanceResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}
