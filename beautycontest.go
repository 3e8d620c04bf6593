package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/commitment"
	"beautycontest/config"
	"beautycontest/contestclient"
	"beautycontest/storage"
	"beautycontest/webserver"
)

var (
	version    = "v1.0"
	commitHash = "dev"
)

type BeautyContestServer struct {
	*webserver.WebServer
	*storage.Storage
	Flags
}

// Flags Server flags
type Flags struct {
	configFile string
	dataDir    string
	logDebug   bool
	logTrace   bool
	webUIAddr  string
	webUIPort  int

	// One-shot mode
	phase    string
	uniID    string
	number   int
	nonce    string
	genNonce bool
}

func main() {

	var (
		err error
		wg  sync.WaitGroup
	)

	server := new(BeautyContestServer)
	server.parseArgs()

	// Logging
	setupLogging(server.dataDir, server.logDebug, server.logTrace)

	log.Infof("=== Beauty Contest %s (%s) ===", version, commitHash)

	if server.genNonce {
		nonce, err := commitment.GenerateNonce()
		if err != nil {
			log.WithError(err).Fatal("Unable to generate nonce")
		}
		fmt.Println(nonce)
		closeLogging()

		return
	}

	// Endpoint file; missing file or keys only disable the affected phase
	fileConfig, err := config.Load(server.configFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Fatal("Could not read config")
		}
		log.WithField("File", server.configFile).Warn("Config file not found; COMMIT_URL and REVEAL_URL are unset")
		fileConfig = config.New(nil)
	}

	// Open/Init database
	server.Storage, err = storage.InitStorage(server.dataDir)
	if err != nil {
		log.WithError(err).Fatal("Could not open storage")
	}

	if server.phase != "" {
		runErr := server.runOnce(context.Background(), fileConfig, os.Stdout)
		server.Storage.Close()
		closeLogging()

		if runErr != nil {
			os.Exit(1)
		}

		return
	}

	// Clean exits
	shutdownChannel := setupCloseChannel()

	wg.Add(1)
	server.WebServer, err = webserver.Start(webserver.WebServerArgs{
		Storage:         server.Storage,
		Config:          fileConfig,
		BindAddr:        server.webUIAddr,
		BindPort:        server.webUIPort,
		TemplateVars:    webserver.TemplateVars{Version: fmt.Sprintf("%s (%s)", version, commitHash)},
		ShutdownChannel: shutdownChannel,
		WG:              &wg,
	})
	if err != nil {
		log.WithError(err).Fatal("Unable to start web UI")
	}

	<-shutdownChannel
	log.Warn("Shutting things down...")

	// Wait for threads to finish
	wg.Wait()

	// Clean close DB, logs
	server.Storage.Close()
	closeLogging()
}

func setupCloseChannel() chan interface{} {

	// Create channels for signals
	signalChan := make(chan os.Signal, 1)
	closingChan := make(chan interface{}, 1)

	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalChan
		close(closingChan)
	}()

	return closingChan
}

func (s *BeautyContestServer) parseArgs() {

	flag.StringVar(&s.configFile, "config", config.DEFAULT_CONFIG_FILE, "Key-value file providing COMMIT_URL and REVEAL_URL")
	flag.StringVar(&s.dataDir, "datadir", "./", "Location of database and log files")

	flag.BoolVar(&s.logDebug, "debug", false, "Enable debug-level logging")
	flag.BoolVar(&s.logTrace, "trace", false, "Enable trace-level logging")

	flag.StringVar(&s.webUIAddr, "webuiaddr", "127.0.0.1", "Address on which to bind web UI server")
	flag.IntVar(&s.webUIPort, "webuiport", 8082, "Port on which to bind web UI server")

	flag.StringVar(&s.phase, "phase", "", fmt.Sprintf("Run a single action and exit: %s or %s", contestclient.PHASE_COMMIT, contestclient.PHASE_REVEAL))
	flag.StringVar(&s.uniID, "id", "", "Participant ID (one-shot mode)")
	flag.IntVar(&s.number, "number", 0, "Number between 0 and 100 (one-shot mode)")
	flag.StringVar(&s.nonce, "nonce", "", "Secret nonce (one-shot mode)")
	flag.BoolVar(&s.genNonce, "gen-nonce", false, "Print a random nonce suggestion and exit")

	printVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Sanity
	if s.phase != "" && s.phase != contestclient.PHASE_COMMIT && s.phase != contestclient.PHASE_REVEAL {
		log.Errorf("Unknown phase: %s", s.phase)
		flag.Usage()
		os.Exit(1)
	}

	// Handle print version and exit
	if *printVersion {
		log.Printf("Beauty Contest %s (%s)", version, commitHash)
		os.Exit(0)
	}
}
