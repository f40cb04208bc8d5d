package handler

import "net/http"

func NewRouter(purchases *PurchaseHandler, trips *TripHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/purchases", purchases.CreatePurchase)
	mux.HandleFunc("/trips/resolve", trips.Resolve)
	mux.HandleFunc("/trips/availability", trips.GetAvailability)
	mux.HandleFunc("/orders", trips.GetOrders)

	return mux
}
