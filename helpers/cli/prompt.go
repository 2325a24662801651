package cli

import (
	"bytes"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

// MainLoop runs exec on every input line, either through an interactive
// go-prompt session or, when stdin is not a terminal, over piped input.
func MainLoop(tag string, exec func(line string), complete func(d prompt.Document) []prompt.Suggest, onQuit func()) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		for range signalCh {
			if onQuit != nil {
				onQuit()
			}
			os.Exit(1)
		}
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt.New(exec, complete, prompt.OptionPrefix(tag+"> ")).Run()
		return
	}

	stdinAll, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}
	for _, lineb := range bytes.Split(stdinAll, []byte{'\n'}) {
		line := string(bytes.TrimSpace(lineb))
		if line != "" {
			exec(line)
		}
	}
}
