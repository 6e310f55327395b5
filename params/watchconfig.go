package params

import (
	"path/filepath"

	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/fsnotify/fsnotify"
)

// WatchConfig watch and reload the config file on change.
func WatchConfig(configFile string) {
	if configFile == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("fsnotify: new watcher failed", "err", err)
		return
	}

	go startWatcher(watcher, configFile)

	file := filepath.Clean(configFile)
	dir := filepath.Dir(file)
	err = watcher.Add(dir)
	if err != nil {
		log.Error("fsnotify: add config path failed", "err", err)
		return
	}
	log.Infof("fsnotify: start to watch config file %v", file)
}

func startWatcher(watcher *fsnotify.Watcher, configFile string) {
	defer watcher.Close()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(configFile) {
				continue
			}
			log.Trace("fsnotify: watcher event", "file", ev.Name, "op", ev.Op)
			if ev.Has(fsnotify.Write) {
				ReloadEscrowConfig(ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			log.Warn("fsnotify: watcher error", "err", err)
		}
	}
}
