package main

import (
	"flag"
	"log"
	"net/http"

	"apexpos/stubserver"
)

func main() {
	addr := flag.String("addr", ":8082", "Listen address")
	flag.Parse()

	s := stubserver.New()
	s.SeedDefault()

	log.Printf("apexstub listening on %s", *addr)
	if err := http.ListenAndServe(*addr, s.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
