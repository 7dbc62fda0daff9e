package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tummytime/canteen/handlers"
	"github.com/tummytime/canteen/middlewares"
	"github.com/tummytime/canteen/models"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes() *Server {
	router := mux.NewRouter()
	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	staffOnly := middlewares.RoleBasedMiddleware(models.RoleSuperAdmin, models.RoleStaff)
	adminOnly := middlewares.RoleBasedMiddleware(models.RoleSuperAdmin)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")
	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	// users
	authRoutes.Handle("/users", staffOnly(http.HandlerFunc(handlers.ListUsers))).Methods("GET")
	authRoutes.Handle("/users/staff", adminOnly(http.HandlerFunc(handlers.CreateStaffUser))).Methods("POST")
	authRoutes.HandleFunc("/users/{id}", handlers.GetUser).Methods("GET")
	authRoutes.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PATCH")
	authRoutes.Handle("/users/{id}", adminOnly(http.HandlerFunc(handlers.DeleteUser))).Methods("DELETE")

	// catalog
	authRoutes.HandleFunc("/categories", handlers.ListCategories).Methods("GET")
	authRoutes.Handle("/categories", staffOnly(http.HandlerFunc(handlers.CreateCategory))).Methods("POST")
	authRoutes.HandleFunc("/categories/{id}", handlers.GetCategory).Methods("GET")
	authRoutes.Handle("/categories/{id}", adminOnly(http.HandlerFunc(handlers.DeleteCategory))).Methods("DELETE")

	authRoutes.HandleFunc("/foods", handlers.ListFoods).Methods("GET")
	authRoutes.Handle("/foods", staffOnly(http.HandlerFunc(handlers.CreateFood))).Methods("POST")
	authRoutes.Handle("/foods/most-sold", adminOnly(http.HandlerFunc(handlers.ListMostSoldFoods))).Methods("GET")
	authRoutes.HandleFunc("/foods/{id}", handlers.GetFood).Methods("GET")
	authRoutes.Handle("/foods/{id}", staffOnly(http.HandlerFunc(handlers.UpdateFood))).Methods("PATCH")
	authRoutes.Handle("/foods/{id}", adminOnly(http.HandlerFunc(handlers.DeleteFood))).Methods("DELETE")

	// cart
	authRoutes.HandleFunc("/cart-items/{user_id}", handlers.GetCartItems).Methods("GET")
	authRoutes.HandleFunc("/cart-items/{cart_id}", handlers.UpdateCartItems).Methods("PUT", "PATCH")
	authRoutes.HandleFunc("/cart-items/{cart_id}", handlers.DeleteCartItems).Methods("DELETE")

	// orders
	authRoutes.HandleFunc("/orders", handlers.CreateOrder).Methods("POST")
	authRoutes.HandleFunc("/orders", handlers.ListOrders).Methods("GET")
	authRoutes.Handle("/orders/new", staffOnly(http.HandlerFunc(handlers.ListNewOrders))).Methods("GET")
	authRoutes.Handle("/orders/{id}/status", staffOnly(http.HandlerFunc(handlers.GetOrderStatus))).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}", handlers.GetOrder).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}", handlers.UpdateOrderStatus).Methods("PATCH")
	authRoutes.Handle("/orders/{id}", adminOnly(http.HandlerFunc(handlers.DeleteOrder))).Methods("DELETE")

	// payments
	authRoutes.HandleFunc("/payments", handlers.CreatePayment).Methods("POST")
	authRoutes.HandleFunc("/payments", handlers.ListPayments).Methods("GET")
	authRoutes.HandleFunc("/payments/{id}", handlers.GetPayment).Methods("GET")
	authRoutes.Handle("/payments/{id}", adminOnly(http.HandlerFunc(handlers.DeletePayment))).Methods("DELETE")

	// feedback
	authRoutes.HandleFunc("/feedbacks", handlers.CreateFeedback).Methods("POST")
	authRoutes.HandleFunc("/feedbacks/{food_id}", handlers.ListFeedback).Methods("GET")
	authRoutes.HandleFunc("/feedbacks/{id}", handlers.DeleteFeedback).Methods("DELETE")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
