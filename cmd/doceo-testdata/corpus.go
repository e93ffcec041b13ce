package main

// corpus maps each default catalog subject to its sample study note. Every
// note spans three pages so page-level citations are exercised, and each
// carries a few crisp facts worth asking about.
var corpus = map[string]note{
	"Natural Language Processing": {
		title: "NLP Study Notes",
		markdown: `# Natural Language Processing

## Tokenization and Embeddings

Text enters a model as a sequence of subword tokens. Byte-pair encoding
builds the vocabulary by repeatedly merging the most frequent adjacent
symbol pair, which keeps rare words representable without an unbounded
vocabulary.

Each token maps to a dense embedding vector. Similar words end up close in
the embedding space, so distance between vectors is a usable proxy for
semantic similarity.

- Subword tokenization handles out-of-vocabulary words
- Embedding dimensions typically range from 128 to 4096
- Positional encodings inject token order into the representation

<!-- pagebreak -->

## The Transformer

Self-attention compares every token against every other token. The raw
dot products are divided by the square root of the key dimension before
the softmax, which keeps gradients stable for large key sizes.

The base BERT model stacks 12 transformer encoder layers and holds roughly
110 million parameters. It was pre-trained with two objectives: masked
language modeling and next sentence prediction.

` + "```" + `
Attention(Q, K, V) = softmax(Q K^T / sqrt(d_k)) V
` + "```" + `

Multi-head attention runs several attention functions in parallel over
projected subspaces and concatenates the results, letting different heads
specialize in different relations.

<!-- pagebreak -->

## Evaluation

Perplexity measures how well a language model predicts held-out text; it
is the exponential of the average negative log likelihood per token, and
lower is better. Classification tasks report accuracy or F1, while
generation tasks lean on BLEU, ROUGE, or human preference comparisons.

Fine-tuning adapts a pre-trained model with a small task head. Freezing
most layers and training only the head is cheaper but usually weaker than
full fine-tuning.
`,
	},

	"Advance Computer Vision": {
		title: "Computer Vision Study Notes",
		markdown: `# Advance Computer Vision

## Convolutions

A convolution slides a small kernel over the image and produces a feature
map. Output spatial size follows from the input size, kernel size,
padding, and stride:

` + "```" + `
out = (in - kernel + 2 * padding) / stride + 1
` + "```" + `

A 3x3 kernel with stride 1 and padding 1 preserves spatial dimensions,
which is why 3x3 convolutions dominate modern backbone designs.

<!-- pagebreak -->

## Architectures

ResNet introduced residual connections: each block learns a correction on
top of its input rather than a full transformation, which lets networks of
50 or more layers train without vanishing gradients. ResNet-50 reaches
roughly 76 percent top-1 accuracy on ImageNet.

Pooling layers downsample feature maps. Max pooling keeps the strongest
activation in each window; global average pooling collapses each channel
to one value before the classifier.

- VGG-16: plain 3x3 stacks, 138M parameters
- ResNet-50: residual bottlenecks, 25.6M parameters
- Vision Transformer: 16x16 patches as tokens

<!-- pagebreak -->

## Geometry and Detection

The pinhole camera model projects a 3D point through the intrinsic
matrix, which carries the focal lengths and the principal point. Camera
calibration estimates these parameters from views of a known pattern.

Object detectors are scored by intersection over union. A predicted box
usually counts as correct when its IoU with the ground truth box exceeds
0.5, and mean average precision summarizes the precision-recall curve
across classes.
`,
	},

	"Data Engineering": {
		title: "Data Engineering Study Notes",
		markdown: `# Data Engineering

## Batch Pipelines

ETL extracts from sources, transforms in a staging area, and loads into a
warehouse; ELT loads raw data first and transforms inside the warehouse.
Idempotent loads matter more than either acronym: re-running yesterday's
job must not duplicate yesterday's rows.

Columnar formats such as Parquet store each column contiguously, so an
analytical query reads only the columns it touches. Row formats remain
better for point lookups and transactional writes.

<!-- pagebreak -->

## Streaming

Event time is when something happened; processing time is when the
pipeline saw it. The two diverge under lag, so windowed aggregations need
a rule for closing a window.

A watermark bounds how late an event may arrive before the pipeline
finalizes its window. Events older than the watermark are either dropped
or routed to a late-data path, trading completeness for bounded latency.

- At-most-once: cheapest, loses data on failure
- At-least-once: replays, needs idempotent sinks
- Exactly-once: transactional sinks or deduplication

<!-- pagebreak -->

## Modeling

A star schema keeps one wide fact table ringed by denormalized dimension
tables. Queries join the fact table to a handful of dimensions, which
stays fast because the dimensions are small.

Partitioning large tables by date bounds the data each query scans.
Choosing a partition key with high skew, such as customer id in a
lopsided tenant base, concentrates load on a few partitions and defeats
the purpose.
`,
	},

	"Block Chain Technology": {
		title: "Blockchain Study Notes",
		markdown: `# Block Chain Technology

## Ledger Structure

A blockchain is an append-only ledger of blocks, each holding a batch of
transactions and the hash of its predecessor. Altering any historic
transaction changes that block's hash and breaks every later link, which
is what makes tampering evident.

Transactions inside a block are arranged in a Merkle tree. The block
header stores only the Merkle root; proving a transaction belongs to a
block takes a path of sibling hashes whose length grows with the log of
the transaction count.

<!-- pagebreak -->

## Consensus

Proof of work asks miners to find a nonce so the block hash falls below a
difficulty target. Bitcoin retunes the target every 2016 blocks to hold
the average block interval near 10 minutes. The longest valid chain wins,
so rewriting history means out-mining the honest majority.

Proof of stake replaces hash power with bonded capital. Validators are
chosen to propose blocks in proportion to their stake and lose part of it
when they sign conflicting blocks.

- Finality: probabilistic under proof of work, checkpointed under stake
- Fork choice: longest chain versus heaviest attested subtree

<!-- pagebreak -->

## Smart Contracts

A smart contract is code stored on chain whose functions run inside every
validating node. Execution is metered in gas: each operation costs a fixed
amount, the sender pays for what runs, and a transaction that exhausts its
gas limit reverts but still pays.

State lives in the contract's own storage slots. Because storage writes
are the most expensive operations, contract design pushes data off chain
where possible and anchors only commitments on chain.
`,
	},

	"Time Series Forcasting": {
		title: "Time Series Study Notes",
		markdown: `# Time Series Forcasting

## Decomposition and Stationarity

A series splits into trend, seasonality, and remainder. STL performs the
split with repeated loess smoothing and tolerates seasonality that drifts
over the years.

Most classical models assume stationarity: constant mean and variance over
time. Differencing the series d times removes polynomial trend of degree
d, and the augmented Dickey-Fuller test checks whether differencing is
still needed.

<!-- pagebreak -->

## ARIMA

ARIMA(p, d, q) combines three parts: an autoregression on the last p
values, d rounds of differencing, and a moving average over the last q
forecast errors. Seasonal variants add the same triple at the seasonal
lag.

` + "```" + `
ARIMA(1, 1, 1):  y'_t = c + phi * y'_{t-1} + theta * e_{t-1} + e_t
` + "```" + `

Model order is usually picked by minimizing AIC over a small grid, then
checking that the residuals look like white noise.

<!-- pagebreak -->

## Sequence Networks and Evaluation

An LSTM cell carries a separate cell state guarded by input, forget, and
output gates, which preserves gradients across long horizons where a
plain RNN forgets. For many business series, gradient boosted trees over
lag features remain a strong baseline.

Forecasts are scored out of sample with rolling-origin evaluation. MAPE
reads as a percentage but explodes near zero actuals; MASE scales error
by a naive seasonal forecast and stays defined everywhere.
`,
	},
}
