package dash

import (
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api/erp"
	"CierreCaja/api/verificaciones"
	"CierreCaja/internal/config"
	"CierreCaja/internal/filestore"
)

func StartDashService(pgxPool *pgxpool.Pool) {
	client := erp.NewClient(config.ERPBaseURL(), 30*time.Second)
	files := filestore.New(config.UploadsDir())
	store := verificaciones.NewStore(pgxPool, files)

	mux := http.NewServeMux()
	mux.HandleFunc("/dash/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Dashboard Service"))
	})
	mux.Handle("/dash/resumen-comisiones", ResumenComisiones(pgxPool, client))
	mux.Handle("/dash/resumen-verificaciones", ResumenVerificaciones(store, client))
	mux.Handle("/dash/historial-cierres", HistorialCierres(pgxPool))

	log.Println("Dashboard Service started on :7143")
	err := http.ListenAndServe(":7143", mux)
	if err != nil {
		log.Fatalf("Dashboard Service failed: %v", err)
	}
}
