//go:build ignore

// Package main generates a synthetic Arabic legal corpus for benchmarking.
// Usage: go run scripts/generate-test-corpus.go -files 200 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 200, "Number of files to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Sentence pools assembled from common legal phrasing. The output is not
// meaningful prose; it only has to exercise the splitter, the tokenizer,
// and both retrieval channels at scale.
var (
	legalSubjects = []string{
		"كل شخص طبيعي او اعتباري",
		"المستأجر",
		"المالك",
		"العامل",
		"صاحب العمل",
		"الموظف العمومي",
		"الدائن",
		"المدين",
	}
	legalVerbs = []string{
		"يلتزم بأداء",
		"يحق له المطالبة بـ",
		"يُمنع عليه",
		"يتوجب عليه تسليم",
		"يجوز له فسخ",
		"يتحمل مسؤولية",
	}
	legalObjects = []string{
		"التعويض المستحق وفقا للقانون",
		"الالتزامات التعاقدية المتفق عليها",
		"الاجرة المحددة في العقد",
		"الضرر الناجم عن الاخلال",
		"الحقوق المترتبة عن عقد العمل",
		"المبالغ المستحقة للخزينة العمومية",
	}
	decisionGrounds = []string{
		"حيث ان الطعن استوفى اوضاعه الشكلية المقررة قانونا",
		"حيث ان الوجه المثار من الطاعن يرمي الى نقض القرار المطعون فيه",
		"حيث يتبين من اوراق الملف ان المحكمة ناقشت جميع الدفوع",
		"حيث ان قضاة الموضوع طبقوا القانون تطبيقا سليما",
		"حيث ان الدفع بالتقادم اثير لاول مرة امام المحكمة العليا",
	}
	lawNames = []string{
		"القانون المدني",
		"قانون العقوبات",
		"قانون الاجراءات المدنية والادارية",
		"قانون العمل",
		"القانون التجاري",
		"قانون الاسرة",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	for _, subdir := range []string{"laws", "decisions", "summaries"} {
		if err := os.MkdirAll(filepath.Join(*outputDir, subdir), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", subdir, err)
			os.Exit(1)
		}
	}

	laws := *numFiles * 40 / 100
	decisions := *numFiles * 30 / 100
	summaries := *numFiles - laws - decisions

	fmt.Printf("Generating %d files in %s...\n", *numFiles, *outputDir)

	for i := 0; i < laws; i++ {
		if err := writeLaw(rng, i); err != nil {
			fmt.Fprintf(os.Stderr, "law %d: %v\n", i, err)
		}
	}
	for i := 0; i < decisions; i++ {
		if err := writeDecision(rng, i); err != nil {
			fmt.Fprintf(os.Stderr, "decision %d: %v\n", i, err)
		}
	}
	for i := 0; i < summaries; i++ {
		if err := writeSummaryCompilation(rng, i); err != nil {
			fmt.Fprintf(os.Stderr, "summary %d: %v\n", i, err)
		}
	}

	fmt.Printf("Generated %d files.\n", laws+decisions+summaries)
}

func sentence(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s %s.",
		legalSubjects[rng.Intn(len(legalSubjects))],
		legalVerbs[rng.Intn(len(legalVerbs))],
		legalObjects[rng.Intn(len(legalObjects))])
}

func paragraph(rng *rand.Rand, sentences int) string {
	parts := make([]string, sentences)
	for i := range parts {
		parts[i] = sentence(rng)
	}
	return strings.Join(parts, " ")
}

func writeLaw(rng *rand.Rand, index int) error {
	var b strings.Builder
	articles := 10 + rng.Intn(40)

	fmt.Fprintf(&b, "%s\nصادر بموجب الامر رقم %d-%d\n\n",
		lawNames[rng.Intn(len(lawNames))], 60+rng.Intn(40), 1+rng.Intn(99))
	for i := 1; i <= articles; i++ {
		fmt.Fprintf(&b, "المادة %d\n%s\n\n", i, paragraph(rng, 2+rng.Intn(3)))
	}

	name := filepath.Join(*outputDir, "laws", fmt.Sprintf("قانون_%d.txt", index))
	return os.WriteFile(name, []byte(b.String()), 0644)
}

func writeDecision(rng *rand.Rand, index int) error {
	var b strings.Builder

	fmt.Fprintf(&b, "الجمهورية الجزائرية الديمقراطية الشعبية\nالمحكمة العليا\nملف رقم %d\n\n",
		100000+rng.Intn(900000))
	b.WriteString("من حيث الشكل\n")
	b.WriteString(paragraph(rng, 3) + "\n\n")
	b.WriteString("من حيث الموضوع\n")
	for i := 0; i < 3+rng.Intn(5); i++ {
		b.WriteString(decisionGrounds[rng.Intn(len(decisionGrounds))] + ". ")
		b.WriteString(paragraph(rng, 2) + "\n")
	}
	b.WriteString("\nلهذه الاسباب\nقررت المحكمة العليا رفض الطعن وتحميل الطاعن المصاريف القضائية.\n")

	name := filepath.Join(*outputDir, "decisions", fmt.Sprintf("قرار_محكمة_عليا_%d.txt", index))
	return os.WriteFile(name, []byte(b.String()), 0644)
}

func writeSummaryCompilation(rng *rand.Rand, index int) error {
	var b strings.Builder
	entries := 5 + rng.Intn(15)

	for i := 0; i < entries; i++ {
		if i > 0 {
			b.WriteString("\n----------\n")
		}
		fmt.Fprintf(&b, "القرار رقم %d\n", 200000+rng.Intn(800000))
		if rng.Intn(2) == 0 {
			b.WriteString("المبدأ القانوني: ")
		}
		b.WriteString(paragraph(rng, 2+rng.Intn(3)) + "\n")
	}

	name := filepath.Join(*outputDir, "summaries", fmt.Sprintf("اجتهادات_%d.txt", index))
	return os.WriteFile(name, []byte(b.String()), 0644)
}
