package server

import (
	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/notifier"
	handler "auction-engine/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService, events *notifier.Notifier) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService, events)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListOpenAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionStateHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.SubmitBidHandler)
		auctions.GET("/:auction_id/events", auctionHandler.StreamBidsHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/balance", auctionHandler.GetBalanceHandler)
	}

	return router
}
