// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

/*
Package keywords turns a batch of retrieved video documents into a ranked
list of related keyword recommendations.

# Pipeline

	Tokenizer   -> candidate terms per document (set semantics)
	Similarity  -> edit-distance floor vs. catalog synonym bonus, LRU memoized
	Classifier  -> one category label for the batch titles
	TermWeights -> batch-relative TF-IDF
	TrendScorer -> indicator phrases, peak-hour and seasonal multipliers
	Blender     -> per-user interest boost
	Scorer      -> composite score, stable ranking, shortlist, final cut

Each candidate's relevance is a weighted sum of independent signals:

	0.25*log(freq+1) + 0.20*avgPopularity + 0.15*tfidf + 0.10*max(sentiment,0)
	+ 0.10*distinctDocs/batch + 0.10*trend + 0.05*seasonal + 0.05*similarity

Terms seen in fewer than two documents, and the query keyword itself, never
rank. Ties keep the order in which terms were first seen in the batch.

# Thread Safety

Scorer, Classifier, Similarity and TrendScorer are safe for concurrent use.
Shared memo tables are bounded LRU caches; everything else is per call.

# Usage

	cat := catalog.Default()
	scorer, err := keywords.NewScorer(keywords.DefaultConfig(), cat, profiles, logger)
	if err != nil {
	    return err
	}
	result, err := scorer.Score(ctx, docs, "다이어트", userID)
*/
package keywords
