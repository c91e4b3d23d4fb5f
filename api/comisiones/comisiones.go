package comisiones

import (
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api/erp"
	"CierreCaja/internal/config"
)

func StartComisionesService(pgxPool *pgxpool.Pool) {
	client := erp.NewClient(config.ERPBaseURL(), 30*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/comisiones/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Comisiones Service"))
	})
	mux.Handle("/comisiones/calcular", CalcularComisiones(pgxPool, client))
	mux.Handle("/comisiones/export-excel", ExportarExcel(pgxPool, client))

	log.Println("Comisiones Service started on :4143")
	if err := http.ListenAndServe(":4143", mux); err != nil {
		log.Fatalf("Comisiones Service failed: %v", err)
	}
}
