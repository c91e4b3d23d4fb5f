package verificaciones

import (
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api/erp"
	"CierreCaja/internal/config"
	"CierreCaja/internal/filestore"
)

func StartVerificacionesService(pgxPool *pgxpool.Pool) {
	store := NewStore(pgxPool, filestore.New(config.UploadsDir()))
	client := erp.NewClient(config.ERPBaseURL(), 30*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/verificaciones/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Verificaciones Service"))
	})
	mux.Handle("/verificaciones/crear", CrearVerificacion(store))
	mux.Handle("/verificaciones/actualizar", ActualizarVerificacion(store))
	mux.Handle("/verificaciones/eliminar", EliminarVerificacion(store))
	mux.Handle("/verificaciones/listar", ListarVerificaciones(store))
	mux.Handle("/verificaciones/detalle", DetalleVerificacion(store))
	mux.Handle("/verificaciones/consolidacion", ConsolidacionPagos(store, client))

	// Evidence photos are served straight from the uploads dir.
	mux.Handle("/uploads/payment-verifications/", http.StripPrefix("/uploads/payment-verifications/", http.FileServer(http.Dir(config.UploadsDir()))))

	log.Println("Verificaciones Service started on :6143")
	if err := http.ListenAndServe(":6143", mux); err != nil {
		log.Fatalf("Verificaciones Service failed: %v", err)
	}
}
