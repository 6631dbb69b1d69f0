package key

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"kairosvote.io/kairos/cmd/kairos/common"
	"kairosvote.io/kairos/lib/common/keypair"
)

var (
	GenerateCmd *cobra.Command

	flagPublicKey bool
	flagFormat    string
)

type generatedKeypair struct {
	Seed    string `json:"seed"`
	Address string `json:"address"`
}

func defaultEncode(v interface{}, w io.Writer) error {
	t := template.Must(template.New("").Parse(`   Secret Seed: {{ .Seed }}
Validator Address: {{ .Address }}
`))
	return t.Execute(w, v)
}

func onelineEncode(v interface{}, w io.Writer) error {
	kp := v.(generatedKeypair)
	fmt.Fprintf(w, "%s %s\n", kp.Seed, kp.Address)
	return nil
}

func init() {
	GenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a validator keypair",
		Run: func(c *cobra.Command, args []string) {
			input := strings.TrimSpace(strings.Join(args, " "))

			kp, err := generateKP(input, flagPublicKey)
			if err != nil {
				common.PrintFlagsError(c, "<input>", err)
			}

			encoders := map[string]common.Encode{
				"json":       common.DefaultEncodes["json"],
				"prettyjson": common.DefaultEncodes["prettyjson"],
				"default":    defaultEncode,
				"oneline":    onelineEncode,
			}

			encode, ok := encoders[flagFormat]
			if !ok {
				common.PrintFlagsError(c, "format", fmt.Errorf(`"%s" not recognized`, flagFormat))
			}

			if err := encode(generatedKeypair{
				Seed:    kp.Seed(),
				Address: kp.Address(),
			}, os.Stdout); err != nil {
				common.PrintError(c, err)
			}
		},
	}

	GenerateCmd.Flags().BoolVar(&flagPublicKey, "parse", false, "parse secret seed")
	GenerateCmd.Flags().StringVar(&flagFormat, "format", "default", "format={default, json, oneline, prettyjson}")
}

func generateKP(seedOrPassphrase string, fromSeed bool) (full *keypair.Full, err error) {
	if len(seedOrPassphrase) == 0 {
		full, err = keypair.RandomCanFail()
	} else if fromSeed {
		var kp keypair.KP
		if kp, err = keypair.Parse(seedOrPassphrase); err == nil {
			var ok bool
			if full, ok = kp.(*keypair.Full); !ok {
				err = fmt.Errorf("not a secret seed")
			}
		}
	} else {
		full = keypair.Master(seedOrPassphrase).(*keypair.Full)
	}

	return
}
