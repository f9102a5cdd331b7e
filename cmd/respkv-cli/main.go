package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/loganszeto/respkv/internal/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	reader := resp.NewReader(conn)
	writer := resp.NewWriter(conn)

	if flag.NArg() > 0 {
		if err := roundTrip(reader, writer, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}
		args := strings.Fields(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		if strings.EqualFold(args[0], "QUIT") || strings.EqualFold(args[0], "EXIT") {
			return
		}
		if err := roundTrip(reader, writer, args); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
	}
}

func roundTrip(r *resp.Reader, w *resp.Writer, args []string) error {
	elems := make([]resp.Frame, 0, len(args))
	for _, arg := range args {
		elems = append(elems, resp.BulkString(arg))
	}
	if err := w.WriteFrame(resp.Array(elems...)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	response, err := r.ReadFrame()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	printFrame(response)
	return nil
}

func printFrame(f resp.Frame) {
	switch f.Type {
	case resp.TypeSimpleString:
		fmt.Println(f.Str)
	case resp.TypeError:
		fmt.Println("(error)", f.Str)
	case resp.TypeInteger:
		fmt.Println(f.Int)
	case resp.TypeBulkString:
		fmt.Printf("%q\n", string(f.Bulk))
	case resp.TypeNull:
		fmt.Println("(nil)")
	case resp.TypeArray:
		for i, elem := range f.Array {
			fmt.Printf("%d) ", i+1)
			printFrame(elem)
		}
	}
}
