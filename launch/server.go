package main

import (
	"flag"
	"log"
	"net"

	pb "github.com/JohnSon-zh-12345/pyconvsegnet/comm/proto"
	cs "github.com/JohnSon-zh-12345/pyconvsegnet/coordinator/server_lib"
	"google.golang.org/grpc"
)

func main() {
	address := flag.String("address", "[::1]:8080", "address the coordinator listens on")
	maxDevices := flag.Int("max-devices", 64, "maximum ranks a collective group may hold")
	flag.Parse()

	listen, err := net.Listen("tcp", *address)
	if err != nil {
		log.Fatalf("failed to listen on address %s: %v", *address, err)
	}
	s := grpc.NewServer()
	pb.RegisterCollectiveServer(s, cs.NewCollectiveService(*maxDevices))
	log.Printf("Collective Coordinator Server listening on %s", *address)
	if err := s.Serve(listen); err != nil {
		log.Fatalf("failed to serve gRPC server on %s: %v", *address, err)
	}
}
