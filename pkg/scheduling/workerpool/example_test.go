package workerpool_test

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vnykmshr/taskflow/pkg/queue"
	"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
)

func Example() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reqSrv, requests := queue.NewFIFOServer[int]()
	resSrv, results := queue.NewFIFOServer[int]()
	go func() { _ = reqSrv.Listen(ctx) }()
	go func() { _ = resSrv.Listen(ctx) }()

	pool, err := workerpool.New[int, int](workerpool.Map(func(n int) int { return n * n }),
		requests, results, workerpool.Config{Workers: 3})
	if err != nil {
		fmt.Println(err)
		return
	}
	go func() { _ = pool.Listen(ctx) }()

	for i := 1; i <= 4; i++ {
		_ = requests.Enqueue(ctx, i)
	}

	squares := make([]int, 0, 4)
	for len(squares) < 4 {
		sq, err := results.Receive(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}
		squares = append(squares, sq)
	}
	sort.Ints(squares)
	fmt.Println(squares)

	cancel()
	<-pool.Done()
	<-reqSrv.Done()
	<-resSrv.Done()
	// Output: [1 4 9 16]
}

func ExampleTransformFunc() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reqSrv, requests := queue.NewFIFOServer[string]()
	resSrv, results := queue.NewFIFOServer[string]()
	go func() { _ = reqSrv.Listen(ctx) }()
	go func() { _ = resSrv.Listen(ctx) }()

	shout := workerpool.TransformFunc[string, string](func(_ context.Context, s string) (string, error) {
		if s == "" {
			return "", fmt.Errorf("empty input")
		}
		return strings.ToUpper(s) + "!", nil
	})

	pool, _ := workerpool.New[string, string](shout, requests, results, workerpool.Config{
		Workers: 1,
		OnError: func(_ int, err error) { fmt.Println("dropped:", err) },
	})
	go func() { _ = pool.Listen(ctx) }()

	_ = requests.Enqueue(ctx, "")
	_ = requests.Enqueue(ctx, "hello")

	res, _ := results.Receive(ctx)
	fmt.Println(res)

	cancel()
	<-pool.Done()
	<-reqSrv.Done()
	<-resSrv.Done()
	// Output:
	// dropped: empty input
	// HELLO!
}
