// Command sidplay is a minimal CLI front end for the sidcore player: it
// loads a PSID/RSID tune, drives an SDL2 audio device with the mixed
// PCM stream, and optionally opens a status window.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/text/language"

	"github.com/halfcycle/sidcore/internal/debug"
	"github.com/halfcycle/sidcore/internal/player"
	"github.com/halfcycle/sidcore/internal/ui"
)

func main() {
	tunePath := flag.String("tune", "", "Path to a PSID/RSID file")
	configPath := flag.String("config", "", "Path to a TOML player config (optional)")
	frequency := flag.Int("frequency", 44100, "Output sampling rate in Hz")
	stereo := flag.Bool("stereo", false, "Mix to stereo instead of mono")
	song := flag.Int("song", 0, "Subtune to play (0 = tune's default start song)")
	fastSampling := flag.Bool("fast-sampling", false, "Use the cheap zero-order resampler instead of the sinc FIR")
	gui := flag.Bool("gui", false, "Open a status window instead of running headless")
	status := flag.Bool("status", false, "Print a locale-formatted status line and exit after one buffer")
	dumpState := flag.Bool("dump-state", false, "Dump each SID chip's register shadow and the tune info to stderr after loading")
	flag.Parse()

	if *tunePath == "" {
		fmt.Println("Usage: sidplay -tune <path-to-sid-file>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := player.DefaultConfig()
	if *configPath != "" {
		loaded, err := player.LoadConfigTOML(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Frequency = *frequency
	cfg.FastSampling = *fastSampling
	if *stereo {
		cfg.Playback = player.PlaybackStereo
	}

	p, err := player.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring player: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*tunePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading tune: %v\n", err)
		os.Exit(1)
	}
	if err := p.Load(raw); err != nil {
		fmt.Fprintf(os.Stderr, "error loading tune: %v\n", err)
		os.Exit(1)
	}
	if *song > 0 {
		if err := p.SelectSong(*song); err != nil {
			fmt.Fprintf(os.Stderr, "error selecting song %d: %v\n", *song, err)
			os.Exit(1)
		}
	}

	fmt.Println(p.String())

	if *dumpState {
		logger := p.Logger()
		logger.SetComponentEnabled(debug.ComponentDriver, true)
		logger.SetComponentEnabled(debug.ComponentSID, true)

		logger.DumpState(debug.ComponentDriver, "tune", p.CurrentTune())
		for i := 0; i < 3; i++ {
			var regs [32]uint8
			p.GetSidStatus(i, &regs)
			logger.DumpState(debug.ComponentSID, fmt.Sprintf("sid[%d]", i), regs)
		}
		time.Sleep(10 * time.Millisecond) // let the async logger drain before reading it back
		for _, entry := range logger.GetRecentEntries(8) {
			fmt.Fprintln(os.Stderr, entry.Format())
		}
	}

	if *gui {
		runGUI(p, cfg)
		return
	}
	runHeadless(p, cfg, *status)
}

func runHeadless(p *player.Player, cfg player.Config, printStatus bool) {
	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing SDL audio: %v\n", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	channels := uint8(1)
	if cfg.Playback == player.PlaybackStereo {
		channels = 2
	}
	spec := sdl.AudioSpec{
		Freq:     int32(cfg.Frequency),
		Format:   sdl.AUDIO_S16SYS,
		Channels: channels,
		Samples:  4096,
	}
	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening audio device: %v\n", err)
		os.Exit(1)
	}
	defer sdl.CloseAudioDevice(dev)
	sdl.PauseAudioDevice(dev, false)

	width := 1
	if channels == 2 {
		width = 2
	}
	frames := 4096
	buf := make([]int16, frames*width)
	for !p.Halted() {
		n, err := p.Play(buf, frames)
		if err != nil && n == 0 {
			break
		}
		if n == 0 {
			break
		}
		if err := sdl.QueueAudio(dev, int16SliceToBytes(buf[:n*width])); err != nil {
			fmt.Fprintf(os.Stderr, "error queueing audio: %v\n", err)
			break
		}
		if printStatus {
			fmt.Println(p.FormatStatus(language.English))
			return
		}
		for sdl.GetQueuedAudioSize(dev) > uint32(len(buf)*2*4) {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if p.Halted() {
		fmt.Fprintf(os.Stderr, "playback halted: %v\n", p.HaltError())
	}
}

func runGUI(p *player.Player, cfg player.Config) {
	width := 1
	if cfg.Playback == player.PlaybackStereo {
		width = 2
	}
	win := ui.NewStatusUI(p)
	go func() {
		frames := 4096
		buf := make([]int16, frames*width)
		for !p.Halted() {
			if _, err := p.Play(buf, frames); err != nil {
				return
			}
		}
	}()
	win.Run(200 * time.Millisecond)
}

func int16SliceToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
