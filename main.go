package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/chatbot"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/controllers"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/db"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/supabase"
)

type Handlers struct {
	Authentication    *controllers.AuthController
	ChatController    *controllers.ChatController
	BookingController *controllers.BookingController
	ConfigController  *controllers.ConfigController
}

type FileSystem struct {
	fs http.FileSystem
}

// Open serves main_page.html for directory requests so the site root loads
// the landing page.
func (fs FileSystem) Open(path string) (http.File, error) {
	f, err := fs.fs.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if s.IsDir() {
		index := strings.TrimSuffix(path, "/") + "/main_page.html"
		indexFile, err := fs.fs.Open(index)
		if err != nil {
			return nil, err
		}
		f.Close()
		return indexFile, nil
	}

	return f, nil
}

func envOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env config file found, using process environment")
	}

	portNumber := envOrDefault("PORT", "5001")
	databasePath := envOrDefault("SQLITE_PATH", "clinicconnect.db")
	configFile := envOrDefault("CONFIG_FILE", "site_config.json")

	httpRouter := http.NewServeMux()

	dbHandler := db.NewDBConnection(databasePath)

	botService := &chatbot.Service{
		Config:    chatbot.LoadBotConfig(),
		DBManager: dbHandler,
	}

	authController := &controllers.AuthController{
		PatientClient: supabase.NewClient(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_KEY")),
		StaffClient:   supabase.NewClient(os.Getenv("SUPABASE_STAFF_URL"), os.Getenv("SUPABASE_STAFF_KEY")),
		JWTSecret:     os.Getenv("SUPABASE_JWT_SECRET"),
	}

	handlers := &Handlers{
		Authentication: authController,
		ChatController: &controllers.ChatController{
			Bots:           botService,
			AuthController: authController,
		},
		BookingController: &controllers.BookingController{
			DBManager: dbHandler,
		},
		ConfigController: &controllers.ConfigController{
			ConfigFile: configFile,
		},
	}

	//AUTH
	httpRouter.HandleFunc("POST /api/login", handlers.Authentication.Login)
	httpRouter.HandleFunc("POST /api/signup", handlers.Authentication.Signup)

	//CHAT
	httpRouter.HandleFunc("POST /api/chat", handlers.ChatController.SendMessage)
	httpRouter.HandleFunc("POST /api/history", handlers.ChatController.History)
	httpRouter.HandleFunc("POST /api/newChatTable", handlers.ChatController.NewChatTable)
	httpRouter.HandleFunc("DELETE /api/deleteChatTable", handlers.ChatController.DeleteChatTable)
	httpRouter.HandleFunc("POST /api/upload", handlers.ChatController.Upload)
	httpRouter.HandleFunc("GET /api/tables", handlers.ChatController.ListTables)

	//BOOKING
	httpRouter.HandleFunc("GET /api/bookings", handlers.BookingController.BookedTimes)
	httpRouter.HandleFunc("POST /api/book", handlers.BookingController.CreateBooking)
	httpRouter.HandleFunc("GET /api/appointments", handlers.BookingController.Appointments)
	httpRouter.HandleFunc("DELETE /api/appointments", handlers.BookingController.CancelAppointment)
	httpRouter.HandleFunc("PUT /api/appointments", handlers.BookingController.RescheduleAppointment)
	httpRouter.HandleFunc("GET /api/patient_history", handlers.BookingController.PatientHistory)
	httpRouter.HandleFunc("GET /api/doctors", handlers.BookingController.ListDoctors)
	httpRouter.HandleFunc("POST /api/doctors", handlers.BookingController.AddDoctor)
	httpRouter.HandleFunc("GET /api/dashboard", handlers.BookingController.Dashboard)

	//SITE CONFIG
	httpRouter.HandleFunc("GET /api/config", handlers.ConfigController.GetConfig)
	httpRouter.HandleFunc("POST /api/config", handlers.ConfigController.UpdateConfig)

	fileServer := http.FileServer(FileSystem{http.Dir("static/")})
	httpRouter.Handle("/", fileServer)

	handler := cors.AllowAll().Handler(httpRouter)

	logger := log.New(os.Stdout, "clinicconnect", log.LstdFlags)
	logger.Println("Start Listening on port:" + portNumber)

	thisServer := &http.Server{
		Addr:        ":" + portNumber,
		Handler:     handler,
		IdleTimeout: 120 * time.Second,
		ReadTimeout: 15 * time.Second,
		// Replies wait on the conversational backend, which can take minutes.
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		err := thisServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal(err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	signal.Notify(sigChan, os.Kill)

	thisSignalChan := <-sigChan

	logger.Println("Graceful Shutdown", thisSignalChan)

	timeOutContext, canFunct := context.WithTimeout(context.Background(), 5*time.Second)
	defer canFunct()

	thisServer.Shutdown(timeOutContext)
}
