package uam

import (
	"database/sql"
	"log"
	"net/http"

	"CierreCaja/api/uam/user"
)

func StartUAMService(db *sql.DB) {
	mux := http.NewServeMux()
	mux.HandleFunc("/uam/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from UAM Service"))
	})
	/*users*/
	mux.Handle("/uam/users/create-user", http.HandlerFunc(user.CreateUser(db)))
	mux.Handle("/uam/users/get-users", http.HandlerFunc(user.GetUsers(db)))
	mux.Handle("/uam/users/get-user-by-id", http.HandlerFunc(user.GetUserById(db)))
	mux.Handle("/uam/users/update-user", http.HandlerFunc(user.UpdateUser(db)))
	mux.Handle("/uam/users/delete-user", http.HandlerFunc(user.DeleteUser(db)))
	mux.Handle("/uam/users/get-vendors", http.HandlerFunc(user.GetVendors(db)))

	log.Println("UAM Service started on :5143")
	err := http.ListenAndServe(":5143", mux)
	if err != nil {
		log.Fatalf("UAM Service failed: %v", err)
	}
}
