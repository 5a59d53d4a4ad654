package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hyphop/saugns"
	"github.com/hyphop/saugns/internal/gen"
)

const defaultScript = "Wsin f440 a0.5 t1"

func main() {
	var (
		sampleRate = flag.Int("r", 44100, "sample rate in Hz")
		outPath    = flag.String("o", "", "render to a WAV file instead of playing")
		inline     = flag.String("e", "", "inline score string")
		noClickFix = flag.Bool("no-click-reduction", false, "keep exact note durations instead of ending on cycle boundaries")
		printInfo  = flag.Bool("p", false, "print program info before rendering")
	)
	flag.Parse()

	src, err := resolveScriptInput(flag.Arg(0), *inline)
	if err != nil {
		log.Fatal(err)
	}

	prg, err := saugns.Compile(src)
	if err != nil {
		log.Fatal(err)
	}
	if *printInfo {
		fmt.Printf("program: %d nodes, %d updates\n", prg.NodeCount, len(prg.Updates))
	}

	if *outPath != "" {
		samples, err := saugns.RenderSamplesParams(prg, *sampleRate, gen.Params{
			ClickReduction: !*noClickFix,
		})
		if err != nil {
			log.Fatal(err)
		}
		wav := saugns.EncodeWAVPCM16(samples, *sampleRate, 2)
		if err := os.WriteFile(*outPath, wav, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%d frames at %d Hz)\n", *outPath, len(samples)/2, *sampleRate)
		return
	}

	pl, err := saugns.NewPlayer(*sampleRate, saugns.WithClickReduction(!*noClickFix))
	if err != nil {
		log.Fatal(err)
	}
	if err := pl.Play(prg); err != nil {
		log.Fatal(err)
	}
	pl.Wait()
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

func resolveScriptInput(path string, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return defaultScript, nil
}
